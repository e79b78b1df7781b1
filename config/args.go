package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// field describes one of the four positional numbers
type field struct {
	name   string
	prompt string
	set    func(*Config, int)
}

var fields = [...]field{
	{"width", "Enter a board width:", func(c *Config, v int) { c.Width = v }},
	{"height", "Enter a board height:", func(c *Config, v int) { c.Height = v }},
	{"speed", "Enter a speed:", func(c *Config, v int) { c.Speed = v }},
	{"food", "Enter number of food:", func(c *Config, v int) { c.FoodCount = v }},
}

// Resolve fills the four board numbers on top of base
// Exactly four positional args override base; with none, base is used as is when
// fromFile is set, otherwise each number is prompted on out and read from in
func Resolve(base Config, fromFile bool, args []string, in io.Reader, out io.Writer) (Config, error) {
	cfg := base

	switch {
	case len(args) == len(fields):
		for i, f := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(args[i]))
			if err != nil {
				return cfg, fmt.Errorf("%w %s: %q", ErrParse, f.name, args[i])
			}
			f.set(&cfg, v)
		}
		return cfg, nil

	case len(args) != 0:
		return cfg, fmt.Errorf("%w: got %d positional arguments", ErrUsage, len(args))

	case fromFile:
		return cfg, nil
	}

	scanner := bufio.NewScanner(in)
	for _, f := range fields {
		v, err := promptInt(scanner, out, f.prompt)
		if err != nil {
			return cfg, fmt.Errorf("read %s: %w", f.name, err)
		}
		f.set(&cfg, v)
	}
	return cfg, nil
}

// promptInt asks until a line parses as an integer
func promptInt(scanner *bufio.Scanner, out io.Writer, prompt string) (int, error) {
	fmt.Fprintln(out, prompt)
	for {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}

		v, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil {
			return v, nil
		}
		fmt.Fprintln(out, "Failed to parse. Please try again.")
	}
}
