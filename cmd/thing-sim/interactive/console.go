// Package interactive provides the interactive command-line interface
// for the thing simulator.
package interactive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tim-hellhake/gateway-addon-go/pkg/things"
)

// Console handles interactive mode for thing-sim.
type Console struct {
	device *things.Device
	rl     *readline.Instance

	// OnToggleLog, when set, flips console log output and returns the
	// new state. Enables the "log" command.
	OnToggleLog func() bool
}

// New creates a new interactive console for a device.
func New(device *things.Device) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "thing> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{
		device: device,
		rl:     rl,
	}, nil
}

// Stdout returns a writer that coordinates with the command prompt.
// Use this for log output to avoid clobbering the input line.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "list", "l":
			c.cmdList()

		case "get", "g":
			c.cmdGet(args)

		case "set", "s":
			c.cmdSet(args)

		case "action", "a":
			c.cmdAction(args)

		case "actions":
			c.cmdActions()

		case "start":
			c.cmdStart(args)

		case "finish":
			c.cmdFinish(args)

		case "remove":
			c.cmdRemove(args)

		case "emit", "e":
			c.cmdEmit(args)

		case "describe", "d":
			c.cmdDescribe()

		case "log":
			c.cmdLog()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Thing Simulator Commands:
  Properties:
    list               - List properties and their values
    get <name>         - Read a property value
    set <name> <value> - Request a property value change

  Actions:
    action <name> [json] - Request an action, optionally with JSON input
    actions              - List requested actions and their status
    start <id-prefix>    - Move an action to pending
    finish <id-prefix>   - Move an action to completed
    remove <id-prefix>   - Evict a retained action

  Events:
    emit <name> [value]  - Emit an event

  Other:
    describe           - Print the thing description as JSON
    log                - Toggle live log output
    help               - Show this help
    quit               - Exit`)
}

func (c *Console) cmdList() {
	out := c.rl.Stdout()
	properties := c.device.Properties()
	sort.Slice(properties, func(i, j int) bool {
		return properties[i].Name() < properties[j].Name()
	})
	for _, p := range properties {
		marker := ""
		if p.ReadOnly() {
			marker = " (read-only)"
		}
		fmt.Fprintf(out, "  %-16s %s = %v%s\n", p.Name(), p.Type(), p.ReadCachedValue(), marker)
	}
}

func (c *Console) cmdGet(args []string) {
	out := c.rl.Stdout()
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: get <name>")
		return
	}
	value, err := c.device.GetProperty(args[0])
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%s = %v\n", args[0], value)
}

func (c *Console) cmdSet(args []string) {
	out := c.rl.Stdout()
	if len(args) != 2 {
		fmt.Fprintln(out, "Usage: set <name> <value>")
		return
	}
	value, err := c.device.SetProperty(args[0], parseValue(args[1]))
	if err != nil {
		fmt.Fprintf(out, "Rejected: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%s = %v\n", args[0], value)
}

func (c *Console) cmdAction(args []string) {
	out := c.rl.Stdout()
	if len(args) < 1 {
		fmt.Fprintln(out, "Usage: action <name> [json-input]")
		return
	}

	var input any
	if len(args) > 1 {
		raw := strings.Join(args[1:], " ")
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			fmt.Fprintf(out, "Bad input: %v\n", err)
			return
		}
	}

	a, err := c.device.RequestAction(args[0], input)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Requested %s (%s)\n", a.Name(), a.ID())
}

func (c *Console) cmdActions() {
	out := c.rl.Stdout()
	actions := c.device.Actions()
	if len(actions) == 0 {
		fmt.Fprintln(out, "No actions")
		return
	}
	sort.Slice(actions, func(i, j int) bool {
		return actions[i].TimeRequested() < actions[j].TimeRequested()
	})
	for _, a := range actions {
		fmt.Fprintf(out, "  %s  %-12s %-10s requested %s\n",
			a.ID(), a.Name(), a.Status(), a.TimeRequested())
	}
}

func (c *Console) cmdStart(args []string) {
	if a := c.findAction(args); a != nil {
		a.Start()
		fmt.Fprintf(c.rl.Stdout(), "%s is now %s\n", a.Name(), a.Status())
	}
}

func (c *Console) cmdFinish(args []string) {
	if a := c.findAction(args); a != nil {
		a.Finish()
		fmt.Fprintf(c.rl.Stdout(), "%s is now %s\n", a.Name(), a.Status())
	}
}

func (c *Console) cmdRemove(args []string) {
	if a := c.findAction(args); a != nil {
		if err := c.device.RemoveAction(a.ID()); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Removed %s\n", a.ID())
	}
}

// findAction resolves an action by unique ID prefix.
func (c *Console) findAction(args []string) *things.Action {
	out := c.rl.Stdout()
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: <command> <id-prefix>")
		return nil
	}

	var matches []*things.Action
	for _, a := range c.device.Actions() {
		if strings.HasPrefix(a.ID(), args[0]) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		fmt.Fprintf(out, "No action matches %q\n", args[0])
		return nil
	case 1:
		return matches[0]
	default:
		fmt.Fprintf(out, "%q is ambiguous (%d matches)\n", args[0], len(matches))
		return nil
	}
}

func (c *Console) cmdEmit(args []string) {
	out := c.rl.Stdout()
	if len(args) < 1 {
		fmt.Fprintln(out, "Usage: emit <name> [value]")
		return
	}
	var data any
	if len(args) > 1 {
		data = parseValue(strings.Join(args[1:], " "))
	}
	e := c.device.EmitEvent(args[0], data)
	fmt.Fprintf(out, "Emitted %s at %s\n", e.Name(), e.Timestamp())
}

func (c *Console) cmdDescribe() {
	out := c.rl.Stdout()
	data, err := json.MarshalIndent(c.device.Describe(), "", "  ")
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(out, string(data))
}

func (c *Console) cmdLog() {
	out := c.rl.Stdout()
	if c.OnToggleLog == nil {
		fmt.Fprintln(out, "Log output not configured")
		return
	}
	if c.OnToggleLog() {
		fmt.Fprintln(out, "Log output on")
	} else {
		fmt.Fprintln(out, "Log output off")
	}
}

// parseValue interprets a console token as a typed value: booleans and
// numbers keep their type, everything else stays a string. Property
// coercion handles the rest.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
