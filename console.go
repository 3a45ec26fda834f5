package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

const consolePrompt = "servogate> "

// Console is the interactive command loop for manual servo control and
// card registration.
type Console struct {
	app *App
	rl  *readline.Instance
}

// NewConsole creates the interactive console.
func NewConsole(app *App) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          consolePrompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline: %w", err)
	}
	return &Console{app: app, rl: rl}, nil
}

// Run reads commands until quit or context cancellation. On quit it calls
// cancel to bring the rest of the gateway down.
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
			// EOF
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue

		case "1":
			c.app.ctrl.EnableServo()
			fmt.Fprintln(c.rl.Stdout(), "Servo control enabled")

		case "2":
			c.app.ctrl.DisableServo()
			fmt.Fprintln(c.rl.Stdout(), "Servo control disabled")

		case "3":
			c.cmdSetPosition()

		case "4":
			c.cmdAddCard()

		case "5":
			if err := c.app.store.Save(c.app.cfg.AccessFile); err != nil {
				fmt.Fprintf(c.rl.Stdout(), "Save failed: %v\n", err)
			} else {
				fmt.Fprintln(c.rl.Stdout(), "Configuration saved")
			}

		case "s", "status":
			st := c.app.ctrl.Servo()
			fmt.Fprintf(c.rl.Stdout(), "Servo enabled=%v position=%d cards=%d\n",
				st.Enabled, st.Position, c.app.store.Count())

		case "h", "help", "?":
			c.printHelp()

		case "q", "quit", "exit":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintln(c.rl.Stdout(), "Invalid command")
		}
	}
}

func (c *Console) cmdSetPosition() {
	input, err := c.prompt("Enter position (0-180): ")
	if err != nil {
		return
	}

	pos, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		fmt.Fprintln(c.rl.Stdout(), "Please enter a number")
		return
	}

	if c.app.ctrl.SetPosition(pos) {
		fmt.Fprintf(c.rl.Stdout(), "Servo set to %d degrees\n", pos)
	} else {
		fmt.Fprintln(c.rl.Stdout(), "Invalid position")
	}
}

func (c *Console) cmdAddCard() {
	input, err := c.prompt("Enter new card ID: ")
	if err != nil {
		return
	}

	card := strings.TrimSpace(input)
	if err := c.app.store.Register(card); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Card not added: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Card %s added\n", card)
}

// prompt reads one line under a temporary prompt.
func (c *Console) prompt(text string) (string, error) {
	c.rl.SetPrompt(text)
	defer c.rl.SetPrompt(consolePrompt)
	return c.rl.Readline()
}

func (c *Console) printHelp() {
	out := c.rl.Stdout()
	fmt.Fprintln(out, "\nControl commands:")
	fmt.Fprintln(out, "1 - Enable servo control")
	fmt.Fprintln(out, "2 - Disable servo control")
	fmt.Fprintln(out, "3 - Set servo position")
	fmt.Fprintln(out, "4 - Add authorized card")
	fmt.Fprintln(out, "5 - Save configuration")
	fmt.Fprintln(out, "s - Show status")
	fmt.Fprintln(out, "q - Quit")
}
