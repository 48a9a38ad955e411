package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"voxelpilot.ai/internal/trace"
)

func main() {
	var (
		dir      = flag.String("trace", "./data/trace", "trace directory")
		prefix   = flag.String("prefix", "pilot", "trace file prefix (the agent name)")
		fromTick = flag.Uint64("from_tick", 0, "print from world tick (inclusive, optional)")
		toTick   = flag.Uint64("to_tick", 0, "print up to world tick (inclusive, optional)")
		verbose  = flag.Bool("print", false, "print every decision in range")
	)
	flag.Parse()

	files, err := trace.Files(*dir, *prefix)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list trace:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no trace files found in", *dir)
		os.Exit(1)
	}

	var all []trace.Entry
	for _, path := range files {
		entries, err := trace.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
		all = append(all, entries...)
	}
	digest, err := trace.Verify(all)
	if err != nil {
		fmt.Fprintln(os.Stderr, "verify:", err)
		os.Exit(1)
	}

	var (
		switches int
		last     string
		perProc  = map[string]int{}
		paused   int
	)
	for _, e := range all {
		if *fromTick != 0 && e.WorldTick < *fromTick {
			continue
		}
		if *toTick != 0 && e.WorldTick > *toTick {
			break
		}
		name := e.Process
		if name == "" {
			name = "(idle)"
		}
		if name != last {
			switches++
			last = name
		}
		perProc[name]++
		if e.Paused {
			paused++
		}
		if *verbose {
			if e.Start {
				fmt.Println("-- run start")
			}
			fmt.Printf("tick=%d seq=%d proc=%q cmd=%q goal=%q calc_failed=%t safe=%t tasks=%d cancels=%d\n",
				e.WorldTick, e.Seq, name, e.Command, e.Goal, e.CalcFailed, e.SafeToCancel, e.Tasks, e.Cancels)
		}
	}

	names := make([]string, 0, len(perProc))
	for n := range perProc {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return perProc[names[i]] > perProc[names[j]] })
	for _, n := range names {
		fmt.Printf("%6d  %s\n", perProc[n], n)
	}
	fmt.Printf("trace ok: files=%d runs=%d entries=%d switches=%d paused_ticks=%d digest=%s\n", len(files), trace.Runs(all), len(all), switches, paused, digest)
}
