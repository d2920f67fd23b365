package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
)

// prompter asks questions on out and reads answers from reader.
type prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{reader: bufio.NewReader(in), out: out}
}

// ask returns the trimmed answer, or def when the answer is empty.
func (p *prompter) ask(question, def string) string {
	fmt.Fprintf(p.out, "%s %s: ", accentStyle.Render(question), mutedStyle.Render("("+def+")"))
	line, _ := p.reader.ReadString('\n')
	if line = strings.TrimSpace(line); line != "" {
		return line
	}
	return def
}

// askInt repeats the question until the answer is a positive integer.
func (p *prompter) askInt(question string, def int) int {
	for {
		answer := p.ask(question, strconv.Itoa(def))
		n, err := strconv.Atoi(answer)
		if err == nil && n > 0 {
			return n
		}
		fmt.Fprintln(p.out, "Please enter a valid integer")
	}
}

func orPrompt(p *prompter, value, question, def string) string {
	if value != "" {
		return value
	}
	return p.ask(question, def)
}

// splitList splits a ' | ' separated list and drops empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// listenForStop calls stop once when a line reading "q" arrives and returns;
// it also returns at end of input.
func listenForStop(r *bufio.Reader, stop func()) {
	for {
		line, err := r.ReadString('\n')
		if strings.EqualFold(strings.TrimSpace(line), "q") {
			stop()
			return
		}
		if err != nil {
			return
		}
	}
}

// stopRequest remembers that the user asked to stop. onStop runs once.
type stopRequest struct {
	requested atomic.Bool
	onStop    func()
}

func newStopRequest(onStop func()) *stopRequest {
	return &stopRequest{onStop: onStop}
}

// Stop records the request and runs onStop the first time it is called.
func (s *stopRequest) Stop() {
	if s.requested.CompareAndSwap(false, true) && s.onStop != nil {
		s.onStop()
	}
}

// Requested reports whether Stop was called.
func (s *stopRequest) Requested() bool {
	return s.requested.Load()
}
