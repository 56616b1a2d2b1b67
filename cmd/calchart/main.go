// Command calchart is a scriptable front end over the calchart core: decode
// a show file, round-trip it, compile its animation, or seek into it.
package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/jyane/calchart/calchart"
)

func main() {
	defer glog.Flush()
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "calchart",
		Short: "Inspect and compile CalChart show files",
	}
	root.AddCommand(decodeCmd(), encodeCmd(), compileCmd(), seekCmd())
	return root
}

func readShow(path string) (*calchart.Show, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return calchart.Decode(data, calchart.DecodeOptions{})
}

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a show file and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := readShow(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("marchers: %d\n", show.NumMarchers)
			fmt.Printf("sheets:   %d\n", len(show.Sheets))
			fmt.Printf("mode:     %v\n", show.Mode.Kind)
			fmt.Printf("current:  %d\n", show.CurrentSheet)
			for i, s := range show.Sheets {
				fmt.Printf("  sheet %d %q: %d beats\n", i, s.Name, s.Beats)
			}
			return nil
		},
	}
}

func encodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <file> <out>",
		Short: "Decode then re-encode a show file, for round-trip verification",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := readShow(args[0])
			if err != nil {
				return err
			}
			out := show.Encode(calchart.DefaultConfig())
			return os.WriteFile(args[1], out, 0o644)
		},
	}
}

func compileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a show's animation and report any continuity errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := readShow(args[0])
			if err != nil {
				return err
			}
			anim, errs := calchart.Compile(show, calchart.DefaultConfig())
			fmt.Printf("total beats: %d\n", anim.TotalBeats())
			if len(errs) == 0 {
				fmt.Println("no continuity errors")
				return nil
			}
			fmt.Printf("%d continuity error(s):\n", len(errs))
			for _, e := range errs {
				fmt.Printf("  %v\n", e)
			}
			return nil
		},
	}
}

func seekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seek <file> <sheet> <beat>",
		Short: "Compile a show and print every marcher's state at a beat",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := readShow(args[0])
			if err != nil {
				return err
			}
			var sheet, beat int
			if _, err := fmt.Sscanf(args[1], "%d", &sheet); err != nil {
				return fmt.Errorf("invalid sheet index %q", args[1])
			}
			if _, err := fmt.Sscanf(args[2], "%d", &beat); err != nil {
				return fmt.Errorf("invalid beat %q", args[2])
			}
			anim, _ := calchart.Compile(show, calchart.DefaultConfig())
			states, err := anim.Seek(sheet, uint32(beat))
			if err != nil {
				return err
			}
			for i, st := range states {
				label := show.Labels[i].Label
				fmt.Printf("marcher %d (%s): pos=(%d,%d) facing=%.0f style=%s collision=%v\n",
					i, label, st.Position.X, st.Position.Y, float64(st.Facing), st.Style, st.Colliding)
			}
			return nil
		},
	}
}
