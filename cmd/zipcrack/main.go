package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"zipcrack"
	"zipcrack/internal/charset"
	"zipcrack/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func promptString(r *bufio.Reader, label, def string) string {
	fmt.Printf("%s [%s]: ", label, def)
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func promptYesNo(r *bufio.Reader, label string, def bool) bool {
	defStr := "y"
	if !def {
		defStr = "n"
	}
	fmt.Printf("%s (y/n) [%s]: ", label, defStr)
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	if line == "" {
		return def
	}
	return line == "y" || line == "yes"
}

func promptInt(r *bufio.Reader, label string, def int) int {
	for {
		fmt.Printf("%s [%d]: ", label, def)
		line, _ := r.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			return def
		}
		v, err := strconv.Atoi(line)
		if err != nil || v < 0 {
			fmt.Println("Please enter a non-negative integer.")
			continue
		}
		return v
	}
}

func main() {
	testPassword := flag.String("test", "", "test a single password against the archive and exit")
	estimateOnly := flag.Bool("estimate", false, "print the candidate-space estimate and exit")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal("usage: zipcrack [-test PASSWORD | -estimate] <zip-path>")
	}
	zipPath := args[0]

	zipBytes, err := os.ReadFile(zipPath)
	if err != nil {
		log.Fatalf("failed to read zip: %v", err)
	}

	if *testPassword != "" {
		ok, err := zipcrack.TestSingle(zipBytes, *testPassword)
		if err != nil {
			log.Fatalf("test-single failed: %v", err)
		}
		if ok {
			fmt.Println("password is correct")
			os.Exit(0)
		}
		fmt.Println("password is incorrect")
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	defaultCPUs := runtime.NumCPU()

	useLowercase := promptYesNo(reader, "Use lowercase letters (a-z)?", true)
	useUppercase := promptYesNo(reader, "Use uppercase letters (A-Z)?", true)
	useNumbers := promptYesNo(reader, "Use numbers (0-9)?", true)
	useSymbols := promptYesNo(reader, fmt.Sprintf("Use symbols (%s)?", charset.Symbols), false)
	useDictionary := promptYesNo(reader, "Try the built-in common-password dictionary first?", true)

	if !useLowercase && !useUppercase && !useNumbers && !useSymbols && !useDictionary {
		fmt.Println("No character sets or dictionary selected, enabling lowercase letters by default.")
		useLowercase = true
	}

	var customWords []string
	if promptYesNo(reader, "Add custom candidate words to try before the dictionary?", false) {
		for {
			w := promptString(reader, "Custom word (blank to stop)", "")
			if w == "" {
				break
			}
			customWords = append(customWords, w)
		}
	}

	minLen := promptInt(reader, "Minimum password length", 1)
	maxLen := promptInt(reader, "Maximum password length", 8)
	if minLen > charset.MaxLength {
		fmt.Printf("Min length capped at %d\n", charset.MaxLength)
		minLen = charset.MaxLength
	}
	if maxLen > charset.MaxLength {
		fmt.Printf("Max length capped at %d\n", charset.MaxLength)
		maxLen = charset.MaxLength
	}
	if maxLen < minLen {
		fmt.Printf("Max length < min length, adjusting max=%d\n", minLen)
		maxLen = minLen
	}

	workers := promptInt(reader, fmt.Sprintf("Worker goroutines (logical CPUs=%d)", defaultCPUs), defaultCPUs)
	if workers <= 0 {
		workers = 1
	}

	cfg := zipcrack.Config{
		MinLength:     minLen,
		MaxLength:     maxLen,
		UseLowercase:  useLowercase,
		UseUppercase:  useUppercase,
		UseNumbers:    useNumbers,
		UseSymbols:    useSymbols,
		UseDictionary: useDictionary,
		CustomWords:   customWords,
		Workers:       workers,
	}

	if *estimateOnly {
		total, err := zipcrack.Estimate(cfg)
		if err != nil {
			log.Fatalf("estimate failed: %v", err)
		}
		fmt.Printf("estimated candidate count: %s\n", total.String())
		return
	}

	engine, err := zipcrack.NewEngine(zipBytes)
	if err != nil {
		log.Fatalf("failed to open archive: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots, results := engine.Crack(ctx, cfg)

	chosenAlphabet := charset.Build(useNumbers, useLowercase, useUppercase, useSymbols)
	alphabetLen := chosenAlphabet.Len()

	model := tui.NewModel(tui.Config{
		SnapshotCh:  snapshots,
		ResultCh:    relayResults(results),
		Stop:        cancel,
		SetPaused:   zipcrack.SetPaused,
		AlphabetLen: alphabetLen,
		MinLen:      minLen,
		MaxLen:      maxLen,
	})

	if _, err := tea.NewProgram(model).Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}

// relayResults adapts a <-chan zipcrack.Result to the <-chan tui.Result shape the
// TUI model consumes, since the two types are defined in different packages to
// avoid the TUI importing the root package's full surface.
func relayResults(in <-chan zipcrack.Result) <-chan tui.Result {
	out := make(chan tui.Result, 1)
	go func() {
		defer close(out)
		res, ok := <-in
		if !ok {
			return
		}
		out <- tui.Result{Password: res.Password, Err: res.Err}
	}()
	return out
}
