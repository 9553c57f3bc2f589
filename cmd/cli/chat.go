package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"google.golang.org/grpc/status"

	"github.com/and161185/fittrack/internal/model"
)

type sendFunc func(text string, choice bool) (model.Reply, error)

func printReply(w io.Writer, r model.Reply) {
	fmt.Fprintln(w, r.Text)
	for i, c := range r.Choices {
		fmt.Fprintf(w, "  %d) %s\n", i+1, c.Label)
	}
}

// chat reads lines until EOF or "/quit". While the last reply offered
// choices, a bare number picks the matching option.
func chat(in io.Reader, out io.Writer, send sendFunc) error {
	sc := bufio.NewScanner(in)
	var choices []model.Choice
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			return nil
		}

		text, choice := line, false
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(choices) {
			text, choice = choices[n-1].Data, true
		}

		reply, err := send(text, choice)
		if err != nil {
			if st, ok := status.FromError(err); ok {
				fmt.Fprintf(out, "error: %s\n", st.Message())
				continue
			}
			return err
		}
		printReply(out, reply)
		choices = reply.Choices
	}
}
