package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	var (
		layoutPath  = flag.String("layout", "", "Path to HCL layout declaration file")
		structName  = flag.String("struct", "", "Struct to simulate (default: first declared)")
		failAt      = flag.String("fail", "", "Tail field whose initializer fails")
		shared      = flag.Bool("shared", false, "Simulate a reference-counted block")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		debug       = flag.Bool("debug", false, "Verbose logging")
	)
	flag.Parse()

	if *layoutPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: structviz -layout <file.hcl> [-struct name] [-fail field] [-shared]")
		fmt.Fprintln(os.Stderr, "       structviz -layout <file.hcl> -i  (interactive mode)")
		os.Exit(1)
	}

	logger := zap.NewNop()
	if *debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}
	defer logger.Sync()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*layoutPath, *shared, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*layoutPath, *structName, *failAt, *shared, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path, structName, failAt string, shared bool, logger *zap.Logger) error {
	lf, err := loadLayouts(path)
	if err != nil {
		return err
	}
	logger.Debug("layouts loaded",
		zap.String("path", path),
		zap.Int("structs", len(lf.Structs)))

	blk, err := pick(lf, structName)
	if err != nil {
		return err
	}

	sim, err := newSimulation(*blk, shared, failAt)
	if err != nil {
		return err
	}
	logger.Debug("layout computed",
		zap.String("struct", sim.name),
		zap.Uint64("size", uint64(sim.comp.Size)),
		zap.Uint64("align", uint64(sim.comp.Align)))

	fmt.Printf("Struct: %s\n", sim.name)
	fmt.Printf("Block: %d bytes, align %d\n", sim.comp.Size, sim.comp.Align)
	fmt.Printf("\nFields:\n")
	for i, f := range sim.fields {
		fmt.Printf("  %-12s %-4s size=%-3d align=%-2d offset=%d\n",
			f.Name, f.Role, f.Size, f.Align, sim.comp.Offsets[i])
	}

	fmt.Printf("\nConstruction trace:\n")
	for _, e := range sim.events() {
		fmt.Printf("  %s\n", e)
	}
	return nil
}

func pick(lf *layoutFile, name string) (*structBlock, error) {
	if name == "" {
		return &lf.Structs[0], nil
	}
	for i := range lf.Structs {
		if lf.Structs[i].Name == name {
			return &lf.Structs[i], nil
		}
	}
	return nil, fmt.Errorf("no struct %q in layout file", name)
}
