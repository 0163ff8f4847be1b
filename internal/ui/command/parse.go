package command

import (
	"errors"
	"fmt"
	"strings"
)

// Palette verbs.
const (
	VerbRefresh        = "refresh"
	VerbAssign         = "assign"
	VerbStatus         = "status"
	VerbPriority       = "priority"
	VerbCategory       = "category"
	VerbComment        = "comment"
	VerbDeleteEmployee = "delete-employee"
	VerbDeleteTicket   = "delete-ticket"
	VerbReadAll        = "read-all"
	VerbClear          = "clear"
	VerbFilter         = "filter"
	VerbQuit           = "quit"
)

// ErrUnknown is returned for a verb the palette does not know.
var ErrUnknown = errors.New("unknown command")

// Command is a parsed palette line. Target is the ticket or employee the
// command acts on; Arg is the remaining argument, if any.
type Command struct {
	Verb   string
	Target string
	Arg    string
}

type usage struct {
	target bool // first word after the verb is the target
	arg    bool // the rest of the line is required
	text   string
}

var verbs = map[string]usage{
	VerbRefresh:        {text: "refresh"},
	VerbAssign:         {target: true, arg: true, text: "assign <ticket> <employee>"},
	VerbStatus:         {target: true, arg: true, text: "status <ticket> <status>"},
	VerbPriority:       {target: true, arg: true, text: "priority <ticket> <priority>"},
	VerbCategory:       {arg: true, text: "category <name>"},
	VerbComment:        {target: true, arg: true, text: "comment <ticket> <text>"},
	VerbDeleteEmployee: {arg: true, text: "delete-employee <employee>"},
	VerbDeleteTicket:   {arg: true, text: "delete-ticket <ticket>"},
	VerbReadAll:        {text: "read all"},
	VerbClear:          {text: "clear"},
	VerbFilter:         {text: "filter"},
	VerbQuit:           {text: "quit"},
}

var aliases = map[string]string{
	"sync":    VerbRefresh,
	"q":       VerbQuit,
	"filters": VerbFilter,
}

// Parse splits a palette line into a Command.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	verb, rest, _ := strings.Cut(line, " ")
	verb = strings.ToLower(verb)
	rest = strings.TrimSpace(rest)

	if verb == "read" && strings.EqualFold(rest, "all") {
		verb, rest = VerbReadAll, ""
	}
	if a, ok := aliases[verb]; ok {
		verb = a
	}

	u, ok := verbs[verb]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknown, line)
	}

	cmd := Command{Verb: verb}
	if u.target {
		cmd.Target, rest, _ = strings.Cut(rest, " ")
		rest = strings.TrimSpace(rest)
	}
	if u.arg {
		cmd.Arg = rest
		rest = ""
	}

	if (u.target && cmd.Target == "") || (u.arg && cmd.Arg == "") || rest != "" {
		return Command{}, fmt.Errorf("usage: %s", u.text)
	}

	// Single-argument verbs read the whole line as the target.
	if !u.target && u.arg && verb != VerbCategory {
		cmd.Target, cmd.Arg = cmd.Arg, ""
	}
	return cmd, nil
}
