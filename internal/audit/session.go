package audit

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"arketype/internal/display"
	"arketype/internal/logging"
)

const rule = "================================================================"
const thinRule = "----------------------------------------------------------------"

// Session is one interactive judging run over a round. It always resumes at
// the first pending case and writes the result file after every verdict, so
// quitting, crashing, or losing the terminal costs at most the answer that
// was being typed.
type Session struct {
	round  *Round
	in     *bufio.Reader
	out    io.Writer
	log    *slog.Logger
	closed bool // input hit EOF; finish the current case and stop
}

// NewSession prepares a judging session reading answers from in.
func NewSession(r *Round, in io.Reader, out io.Writer) *Session {
	return &Session{
		round: r,
		in:    bufio.NewReader(in),
		out:   out,
		log:   logging.New("audit"),
	}
}

// Run drives the prompt loop until the round completes, the operator quits,
// or input ends. The status report prints on every exit path.
func (s *Session) Run() error {
	judged, total := s.round.Progress()
	fmt.Fprintf(s.out, "Audit round %s: %d of %d judged\n", s.round.Cases.RoundID, judged, total)

	for !s.closed {
		c, ok := s.round.NextPending()
		if !ok {
			break
		}
		s.printCase(c)
		verdict, quit := s.readVerdict()
		if quit {
			break
		}
		note := s.readNote()

		s.round.Judge(c.Index, verdict, note)
		if err := s.round.SaveResults(); err != nil {
			return err
		}
		s.log.Debug("judgment saved", "case", c.Index, "judgment", verdict)
		judged, total = s.round.Progress()
		fmt.Fprintf(s.out, "  Saved (%d of %d judged).\n", judged, total)
	}

	fmt.Fprintln(s.out)
	fmt.Fprint(s.out, FormatStatus(s.round))
	return nil
}

func (s *Session) printCase(c *Case) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, rule)
	fmt.Fprintf(s.out, "  Case %d of %d   [%s]\n", c.Index+1, len(s.round.Cases.Cases), display.RelationType(c.Category))
	fmt.Fprintln(s.out, rule)
	fmt.Fprintf(s.out, "  %s <-> %s\n", c.Source.ID, c.Target.ID)
	fmt.Fprintf(s.out, "  Claim:    %s\n", c.Claim)

	line := "  Distance: "
	if c.Distance != nil {
		line += fmt.Sprintf("%.3f", *c.Distance)
	} else {
		line += "n/a (no shared axes)"
	}
	if c.Fidelity != nil {
		line += fmt.Sprintf("   Declared fidelity: %.2f", *c.Fidelity)
	}
	fmt.Fprintln(s.out, line)

	if len(c.AxisDiffs) > 0 {
		fmt.Fprintln(s.out, "  Axis differences:")
		axes := make([]string, 0, len(c.AxisDiffs))
		for axis := range c.AxisDiffs {
			axes = append(axes, axis)
		}
		sort.Strings(axes)
		for _, axis := range axes {
			marker := ""
			if axis == c.Axis {
				marker = "  (declared axis)"
			}
			fmt.Fprintf(s.out, "    %-28s %.3f%s\n", display.Axis(axis), c.AxisDiffs[axis], marker)
		}
	}
	fmt.Fprintln(s.out, thinRule)
}

// readVerdict prompts until the answer parses. EOF is a quit; a quit means
// stop without judging the case on screen.
func (s *Session) readVerdict() (Judgment, bool) {
	for {
		fmt.Fprintln(s.out, "  [a]gree  [d]isagree  [u]nsure  [s]kip  [q]uit")
		fmt.Fprint(s.out, "  > ")
		line, err := s.in.ReadString('\n')
		ans := strings.ToLower(strings.TrimSpace(line))
		if err != nil {
			s.closed = true
			if ans == "" {
				return "", true
			}
		}
		switch ans {
		case "a", "agree":
			return JudgmentAgree, false
		case "d", "disagree":
			return JudgmentDisagree, false
		case "u", "unsure":
			return JudgmentUnsure, false
		case "s", "skip":
			return JudgmentSkip, false
		case "q", "quit":
			return "", true
		case "":
			continue
		default:
			if s.closed {
				return "", true
			}
			fmt.Fprintf(s.out, "  Unrecognized answer %q.\n", ans)
		}
	}
}

func (s *Session) readNote() string {
	if s.closed {
		return ""
	}
	fmt.Fprint(s.out, "  Note (Enter for none): ")
	line, err := s.in.ReadString('\n')
	if err != nil {
		s.closed = true
	}
	return strings.TrimSpace(line)
}
