// Command archiver is the CLI front-end for the multi-file canonical
// Huffman archiver: compress a set of files into one archive, or
// decompress one back into its original files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"rsc.io/getopt"

	"archiver/internal/archiver"
	"archiver/internal/bitio"
)

const (
	exitOK = iota
	exitCoreError
	exitUsageError
)

type commandType int

const (
	commandUnknown commandType = iota
	commandCompress
	commandDecompress
	commandHelp
)

type commandProperties struct {
	command         commandType
	archiveName     string
	filesToCompress []string
	outputDirectory string
}

// parseArguments walks args as a token queue, the same shape as the
// original archiver's ParseArguments: -c/-d consume the archive name
// (and an optional trailing -o output_dir) before -c also consumes
// every remaining token as a file to compress.
func parseArguments(args []string) (commandProperties, error) {
	var props commandProperties
	tokens := append([]string(nil), args...)

	pop := func() (string, bool) {
		if len(tokens) == 0 {
			return "", false
		}
		tok := tokens[0]
		tokens = tokens[1:]
		return tok, true
	}

	processOutputOption := func() error {
		tokens = tokens[1:] // consume "-o"
		dir, ok := pop()
		if !ok {
			return fmt.Errorf("option -o was used without output_dir specified")
		}
		props.outputDirectory = dir
		return nil
	}

	if len(tokens) == 0 {
		return props, fmt.Errorf("too little options")
	}

	for len(tokens) > 0 {
		switch tokens[0] {
		case "-c":
			props.command = commandCompress
			tokens = tokens[1:]

			name, ok := pop()
			if !ok {
				return props, fmt.Errorf("there's no archive name")
			}
			props.archiveName = name

			if len(tokens) > 0 && tokens[0] == "-o" {
				if err := processOutputOption(); err != nil {
					return props, err
				}
			}

			if len(tokens) == 0 {
				return props, fmt.Errorf("there's no files to compress")
			}

			for len(tokens) > 0 {
				f, _ := pop()
				props.filesToCompress = append(props.filesToCompress, f)
			}

		case "-d":
			props.command = commandDecompress
			tokens = tokens[1:]

			name, ok := pop()
			if !ok {
				return props, fmt.Errorf("no archive name")
			}
			props.archiveName = name

			if len(tokens) > 0 && tokens[0] == "-o" {
				if err := processOutputOption(); err != nil {
					return props, err
				}
			}

		case "-h":
			props.command = commandHelp
			tokens = tokens[1:]

		default:
			return props, fmt.Errorf("unknown option %q", tokens[0])
		}
	}

	return props, nil
}

func printHelp(w *os.File) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "archiver -c archive_name [-o output_dir] file1 [file2 ...] : "+
		"Compress files file1 [file2 ...] and save them in archive archive_name")
	fmt.Fprintln(w, "archiver -d archive_name [-o output_dir] : "+
		"Decompress archive archive_name and save result in output_dir (default: current directory)")
	fmt.Fprintln(w, "archiver -h : Print help message")
	fmt.Fprintln(w, "archiver serve [-addr host:port] : Run the HTTP mirror of compress/decompress")
}

func runCompress(props commandProperties) error {
	var readers []*bitio.Reader
	for _, path := range props.filesToCompress {
		r, err := bitio.NewReader(path)
		if err != nil {
			return err
		}
		readers = append(readers, r)
	}

	writer, err := bitio.NewWriter(props.outputDirectory)
	if err != nil {
		return err
	}

	return archiver.Compress(readers, writer, props.archiveName)
}

func runDecompress(props commandProperties) error {
	reader, err := bitio.NewReader(props.archiveName)
	if err != nil {
		return err
	}

	writer, err := bitio.NewWriter(props.outputDirectory)
	if err != nil {
		return err
	}

	return archiver.Decompress(reader, writer)
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		fs := flag.NewFlagSet("serve", flag.ExitOnError)
		addr := fs.String("addr", ":6969", "address to listen on")
		g := getopt.New(fs)
		g.Alias("a", "addr")
		if err := g.Parse(os.Args[2:]); err != nil {
			os.Exit(exitUsageError)
		}

		if err := serveHTTP(*addr); err != nil {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	props, err := parseArguments(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsageError)
	}

	switch props.command {
	case commandCompress:
		if err := runCompress(props); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitCoreError)
		}
	case commandDecompress:
		if err := runDecompress(props); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitCoreError)
		}
	case commandHelp:
		printHelp(os.Stdout)
	default:
		fmt.Fprintln(os.Stderr, "unknown option")
		os.Exit(exitUsageError)
	}

	os.Exit(exitOK)
}
