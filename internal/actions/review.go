package actions

import (
	"fmt"
	"strconv"
	"strings"

	"ticketflow.dev/ticketflow/internal/hierarchy"
	"ticketflow.dev/ticketflow/internal/output"
	"ticketflow.dev/ticketflow/internal/review"
)

type reviewVerb int

const (
	verbList reviewVerb = iota
	verbShow
	verbEdit
	verbDelete
	verbConfirm
	verbAbort
)

type reviewCommand struct {
	verb reviewVerb
	id   int
}

// parseReviewCommand parses a review loop command line. Verbs that target a
// ticket require its local id.
func parseReviewCommand(line string) (reviewCommand, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return reviewCommand{}, fmt.Errorf("empty command")
	}

	var verb reviewVerb
	needsID := false
	switch fields[0] {
	case "l", "list":
		verb = verbList
	case "s", "show":
		verb, needsID = verbShow, true
	case "e", "edit":
		verb, needsID = verbEdit, true
	case "d", "delete", "del":
		verb, needsID = verbDelete, true
	case "c", "confirm", "create":
		verb = verbConfirm
	case "q", "quit", "abort":
		verb = verbAbort
	default:
		return reviewCommand{}, fmt.Errorf("unknown command %q", fields[0])
	}

	if !needsID {
		return reviewCommand{verb: verb}, nil
	}

	if len(fields) < 2 {
		return reviewCommand{}, fmt.Errorf("command %q needs a ticket id", fields[0])
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return reviewCommand{}, fmt.Errorf("invalid ticket id %q", fields[1])
	}

	return reviewCommand{verb: verb, id: id}, nil
}

// runReviewLoop drives the interactive review session. It returns the frozen
// model on confirm, or nil if the user aborted.
func runReviewLoop(splog *output.Splog, session *review.Session) (*hierarchy.Model, error) {
	showListing(splog, session)

	for {
		line, err := promptTextInput("Command (list, show N, edit N, delete N, confirm, quit)", "")
		if err != nil {
			return nil, err
		}

		cmd, err := parseReviewCommand(line)
		if err != nil {
			splog.Warn("%v", err)
			continue
		}

		switch cmd.verb {
		case verbList:
			showListing(splog, session)

		case verbShow:
			node, err := session.Get(cmd.id)
			if err != nil {
				splog.Warn("%v", err)
				continue
			}
			for _, l := range output.RenderDetail(node) {
				splog.Info("%s", l)
			}

		case verbEdit:
			if err := editTicket(splog, session, cmd.id); err != nil {
				splog.Warn("%v", err)
				continue
			}
			showListing(splog, session)

		case verbDelete:
			if err := session.Delete(cmd.id); err != nil {
				splog.Warn("%v", err)
				continue
			}
			showListing(splog, session)

		case verbConfirm:
			model, err := session.Confirm()
			if err != nil {
				splog.Warn("%v", err)
				continue
			}
			return model, nil

		case verbAbort:
			if err := session.Abort(); err != nil {
				return nil, err
			}
			return nil, nil
		}
	}
}

func showListing(splog *output.Splog, session *review.Session) {
	ids, err := session.List()
	if err != nil {
		splog.Warn("%v", err)
		return
	}
	splog.Newline()
	splog.Info("Proposed tickets (%d):", len(ids))
	for _, l := range output.RenderHierarchy(session.Model()) {
		splog.Info("%s", l)
	}
	splog.Newline()
}

// editTicket walks the user through editing one ticket. Empty answers keep
// the current value.
func editTicket(splog *output.Splog, session *review.Session, id int) error {
	node, err := session.Get(id)
	if err != nil {
		return err
	}

	req := review.EditRequest{}

	title, err := promptTextInput("Title (empty keeps current)", node.Title)
	if err != nil {
		return err
	}
	if title != "" && title != node.Title {
		req.Title = &title
	}

	description, err := promptTextInput("Description (empty keeps current)", node.Description)
	if err != nil {
		return err
	}
	if description != "" && description != node.Description {
		req.Description = &description
	}

	kindChoice, err := promptSelect("Type", []string{
		"keep " + string(node.Kind),
		string(hierarchy.KindEpic),
		string(hierarchy.KindStory),
		string(hierarchy.KindTask),
		string(hierarchy.KindSubtask),
	})
	if err != nil {
		return err
	}
	if kind, ok := hierarchy.ParseKind(kindChoice); ok && kind != node.Kind {
		req.Kind = &kind
	}

	if err := session.Edit(id, req); err != nil {
		return err
	}

	splog.Info("Updated ticket %d", id)
	return nil
}
