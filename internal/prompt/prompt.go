// Package prompt is the console shell around the pure selection logic.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cowin-slot-assistant/internal/common/errors"
)

// Prompter asks the user questions.
type Prompter interface {
	Ask(question string) (string, error)
	AskIndices(question string) ([]int, error)
}

type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

func (c *Console) Ask(question string) (string, error) {
	fmt.Fprint(c.out, question)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// AskIndices reads comma separated 1-based indices.
func (c *Console) AskIndices(question string) ([]int, error) {
	answer, err := c.Ask(question)
	if err != nil {
		return nil, err
	}
	return ParseIndices(answer)
}

// ParseIndices parses "1, 3,4" into []int{1, 3, 4}. Blank entries are skipped.
func ParseIndices(text string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.NewInvalidInputError(text, fmt.Sprintf("%q is not a number", part))
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errors.NewInvalidInputError(text, "no index given")
	}
	return out, nil
}

// Scripted answers questions from a fixed list, for non-interactive runs.
type Scripted struct {
	Answers   []string
	Questions []string
}

func NewScripted(answers ...string) *Scripted {
	return &Scripted{Answers: answers}
}

func (s *Scripted) Ask(question string) (string, error) {
	s.Questions = append(s.Questions, question)
	if len(s.Answers) == 0 {
		return "", fmt.Errorf("no scripted answer for %q", question)
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return strings.TrimSpace(answer), nil
}

func (s *Scripted) AskIndices(question string) ([]int, error) {
	answer, err := s.Ask(question)
	if err != nil {
		return nil, err
	}
	return ParseIndices(answer)
}
