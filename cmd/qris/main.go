// Command qris builds and inspects dynamic QRIS payloads from the static
// merchant template.
//
//	qris encode -amount 10000
//	qris inspect -payload 000201...
//	qris png -amount 10000 -out qris.png
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"viaqris/internal/qris"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "png":
		err = runPNG(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		exitWithError(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: qris <encode|inspect|png> [flags]")
}

func templateFlag(fs *flag.FlagSet) *string {
	return fs.String("template", "", "static QRIS template (fallbacks to DATA_STATIS_QRIS)")
}

func resolveTemplate(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		v = strings.TrimSpace(os.Getenv("DATA_STATIS_QRIS"))
	}
	if v == "" {
		return "", errors.New("a static template is required via -template or DATA_STATIS_QRIS")
	}
	return v, nil
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	tmpl := templateFlag(fs)
	amount := fs.Int64("amount", 0, "amount in rupiah")
	_ = fs.Parse(args)

	template, err := resolveTemplate(*tmpl)
	if err != nil {
		return err
	}
	payload, err := qris.BuildPayload(template, *amount)
	if err != nil {
		return err
	}
	fmt.Println(payload)
	return nil
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	payload := fs.String("payload", "", "QRIS payload to decode (fallbacks to DATA_STATIS_QRIS)")
	_ = fs.Parse(args)

	p, err := resolveTemplate(*payload)
	if err != nil {
		return err
	}
	fields, err := qris.Parse(p)
	if err != nil {
		return err
	}
	for _, f := range fields {
		fmt.Printf("%s  %02d  %s\n", f.Tag, len(f.Value), f.Value)
	}
	if err := qris.Verify(p); err != nil {
		fmt.Printf("checksum: %v\n", err)
	} else {
		fmt.Println("checksum: ok")
	}
	if amount, ok, _ := qris.Amount(p); ok {
		fmt.Printf("amount: %s\n", amount)
	} else {
		fmt.Println("amount: none (static)")
	}
	return nil
}

func runPNG(args []string) error {
	fs := flag.NewFlagSet("png", flag.ExitOnError)
	tmpl := templateFlag(fs)
	amount := fs.Int64("amount", 0, "amount in rupiah")
	size := fs.Int("size", qris.DefaultImageSize, "image size in pixels")
	out := fs.String("out", "qris.png", "output file")
	_ = fs.Parse(args)

	template, err := resolveTemplate(*tmpl)
	if err != nil {
		return err
	}
	payload, err := qris.BuildPayload(template, *amount)
	if err != nil {
		return err
	}
	png, err := qris.RenderPNG(payload, *size)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, png, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", *out, len(png))
	return nil
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
