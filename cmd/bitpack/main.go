// Command bitpack packs integer sequences into dense bit-packed blocks and
// unpacks them again.
//
// Usage:
//
//	bitpack pack -codec overflow_consecutive -o data.bin input.txt
//	bitpack unpack data.bin
//
// Input is whitespace- or comma-separated signed integers; "-" reads stdin.
// Unpack only supports the two overflow codecs: their streams carry a
// self-describing trailer, while the plain codecs require the producing
// handle's metadata by design.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/packbits/bitpack/internal/bitpack"
	"github.com/packbits/bitpack/internal/blockio"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "pack":
		runPack(args)
	case "unpack":
		runUnpack(args)
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: bitpack pack|unpack [flags] <file|->\n")
	os.Exit(2)
}

func runPack(args []string) {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	codecName := fs.String("codec", "consecutive",
		"codec: "+strings.Join(bitpack.Names(), ", "))
	out := fs.String("o", "out.bin", "output file")
	useLZ4 := fs.Bool("lz4", false, "LZ4-compress the packed block")
	fs.Parse(args)

	values, err := readValues(fs.Arg(0))
	if err != nil {
		log.Fatalf("reading input: %v", err)
	}

	codec, err := bitpack.New(*codecName)
	if err != nil {
		log.Fatal(err)
	}
	packed, err := codec.Compress(values)
	if err != nil {
		log.Fatalf("compress: %v", err)
	}

	var bc blockio.Codec = blockio.NoneCodec{}
	if *useLZ4 {
		bc = blockio.LZ4Codec{}
	}
	block, err := blockio.WriteBlock(bc, packed.Words())
	if err != nil {
		log.Fatalf("framing block: %v", err)
	}
	if err := os.WriteFile(*out, block, 0o644); err != nil {
		log.Fatalf("writing %s: %v", *out, err)
	}

	rawBytes := 4 * len(values)
	packedBytes := 4 * len(packed.Words())
	fmt.Printf("codec:      %s\n", packed.Kind())
	fmt.Printf("elements:   %d\n", packed.Len())
	if n := len(packed.OverflowArea()); n > 0 {
		fmt.Printf("overflow:   %d values\n", n)
	}
	fmt.Printf("original:   %d bytes\n", rawBytes)
	fmt.Printf("packed:     %d bytes\n", packedBytes)
	fmt.Printf("on disk:    %d bytes -> %s\n", len(block), *out)
	if packedBytes > 0 {
		fmt.Printf("ratio:      %.2fx\n", float64(rawBytes)/float64(packedBytes))
	}
}

func runUnpack(args []string) {
	fs := flag.NewFlagSet("unpack", flag.ExitOnError)
	straddle := fs.Bool("straddle", true,
		"stream was packed with overflow_consecutive (false: overflow_non_consecutive)")
	fs.Parse(args)

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		log.Fatalf("reading input: %v", err)
	}
	words, err := blockio.ReadBlock(data)
	if err != nil {
		log.Fatalf("reading block: %v", err)
	}
	packed, err := bitpack.DecodeOverflow(words, *straddle)
	if err != nil {
		log.Fatalf("decode: %v", err)
	}
	for _, v := range packed.Decompress() {
		fmt.Println(v)
	}
}

func readValues(path string) ([]int32, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	fields := strings.FieldsFunc(string(data), func(c rune) bool {
		return c == ',' || c == ' ' || c == '\t' || c == '\n' || c == '\r'
	})
	values := make([]int32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", f, err)
		}
		values = append(values, int32(v))
	}
	return values, nil
}
