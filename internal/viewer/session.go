package viewer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Session drives a viewer from a line-oriented command stream. It is the
// interactive loop of the glance binary, kept here so both entry points and
// the tests share it.
type Session struct {
	v   *Viewer
	adv *Advance
	in  io.Reader
	out io.Writer
}

// NewSession wires a session to a viewer and its command/output streams.
func NewSession(v *Viewer, in io.Reader, out io.Writer) *Session {
	return &Session{
		v:   v,
		adv: v.NewAdvance(),
		in:  in,
		out: out,
	}
}

// Run shows the first image and then executes commands until quit or EOF.
//
//	n / p     next / previous image
//	N / P     next / previous directory
//	r         random image
//	j <n>     jump n steps (negative for backward)
//	g <n>     go to ordinal n
//	i         print metadata for the current image
//	s         print pipeline statistics
//	a         toggle auto-advance
//	q         quit
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.adv.Run(ctx)

	if _, err := s.v.First(); err != nil {
		return err
	}
	s.printCurrent()

	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		if cmd == "q" || cmd == "quit" {
			return nil
		}
		if err := s.execute(cmd, args); err != nil {
			if errors.Is(err, ErrExhausted) && s.v.Len() == 0 {
				fmt.Fprintln(s.out, "no viewable images remain")
				return err
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
			continue
		}
		s.printCurrent()
	}
	return scanner.Err()
}

func (s *Session) execute(cmd string, args []string) error {
	switch cmd {
	case "n", "next":
		_, err := s.v.Next()
		return err
	case "p", "prev":
		_, err := s.v.Prev()
		return err
	case "N":
		_, err := s.v.NextDir()
		return err
	case "P":
		_, err := s.v.PrevDir()
		return err
	case "r", "rand":
		_, err := s.v.Rand()
		return err
	case "j", "jump":
		if len(args) != 1 {
			return fmt.Errorf("usage: j <distance>")
		}
		d, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("bad distance %q", args[0])
		}
		_, err = s.v.Jump(d)
		return err
	case "g", "goto":
		if len(args) != 1 {
			return fmt.Errorf("usage: g <ordinal>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("bad ordinal %q", args[0])
		}
		_, err = s.v.Goto(n)
		return err
	case "i", "info":
		s.printInfo()
		return nil
	case "s", "stats":
		s.printStats()
		return nil
	case "a":
		s.adv.TogglePlayPause()
		if s.adv.IsPaused() {
			fmt.Fprintln(s.out, "auto-advance paused")
		} else {
			fmt.Fprintln(s.out, "auto-advance playing")
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (s *Session) printCurrent() {
	info, ok := s.v.CurrentInfo()
	if !ok {
		fmt.Fprintln(s.out, "nothing displayed")
		return
	}
	if info.Decoded {
		fmt.Fprintf(s.out, "[%d/%d] %s %dx%d\n",
			info.Ordinal, info.Total, info.Source, info.Width, info.Height)
		return
	}
	fmt.Fprintf(s.out, "[%d/%d] %s\n", info.Ordinal, info.Total, info.Source)
}

func (s *Session) printInfo() {
	info, ok := s.v.CurrentInfo()
	if !ok || !info.Decoded {
		fmt.Fprintln(s.out, "no decoded image")
		return
	}
	fmt.Fprintf(s.out, "%s: %d frame(s), %dx%d\n",
		info.Source, info.Frames, info.Width, info.Height)
	for _, m := range info.Meta {
		fmt.Fprintf(s.out, "  %s: %s\n", m.Key, m.Value)
	}
}

func (s *Session) printStats() {
	st := s.v.Stats()
	fmt.Fprintf(s.out,
		"listed %d, decodes %d, preload hits %d, history hits %d, removed %d, preload %d, history %d, workers %d\n",
		st.ListLen, st.Decodes, st.PreloadHits, st.HistoryHits, st.Removed,
		st.PreloadLen, st.HistoryLen, st.Workers)
}
