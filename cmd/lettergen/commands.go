package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/urfave/cli/v2"

	"github.com/lehagrefabien-commits/fatca-application/internal/config"
	"github.com/lehagrefabien-commits/fatca-application/internal/counter"
	"github.com/lehagrefabien-commits/fatca-application/internal/letter"
	"github.com/lehagrefabien-commits/fatca-application/internal/substitute"
	"github.com/lehagrefabien-commits/fatca-application/internal/templates"
)

// formFlags maps CLI flags onto the web form's field names.
var formFlags = []struct {
	flag, field, usage string
}{
	{"lang", "lang", "letter language (fr or nl)"},
	{"civilite", "civilite", "H or F"},
	{"prenom", "prenom", "first name"},
	{"nom", "nom", "last name"},
	{"adresse", "adresse", "street and number"},
	{"code-postal", "code_postal", "postal code"},
	{"ville", "ville", "city"},
	{"date-naissance", "date_naissance", "birth date (DD/MM/YYYY)"},
	{"pays", "pays", "country of residence"},
	{"ville-naissance", "ville_naissance", "city of birth"},
	{"pays-naissance", "pays_naissance", "country of birth"},
}

func renderCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "template",
			Usage: "template `FILE` (default: template_<lang>.docx in the configured template dir)",
		},
		&cli.StringFlag{
			Name:     "out",
			Aliases:  []string{"o"},
			Usage:    "write the letter to `FILE`",
			Required: true,
		},
		&cli.TimestampFlag{
			Name:   "date",
			Usage:  "letter date (default: today)",
			Layout: letter.DateLayout,
		},
	}
	for _, f := range formFlags {
		flags = append(flags, &cli.StringFlag{Name: f.flag, Usage: f.usage})
	}

	return &cli.Command{
		Name:  "render",
		Usage: "Fill a template from flags and write the .docx",
		Flags: flags,
		Action: func(c *cli.Context) error {
			values := url.Values{}
			for _, f := range formFlags {
				values.Set(f.field, c.String(f.flag))
			}
			req := letter.FromValues(values)
			if err := req.Validate(); err != nil {
				return err
			}

			path := c.String("template")
			if path == "" {
				cfg, err := config.Load(c.String("config"))
				if err != nil {
					return err
				}
				path = filepath.Join(cfg.TemplateDir, templates.Filename(req.Lang))
			}
			doc, err := templates.LoadFile(path)
			if err != nil {
				return err
			}

			date := time.Now()
			if ts := c.Timestamp("date"); ts != nil {
				date = *ts
			}
			changed := substitute.Document(doc, req.Mapping(date))

			out, err := os.Create(c.String("out"))
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if _, err := doc.WriteTo(out); err != nil {
				out.Close()
				return fmt.Errorf("write letter: %w", err)
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}

			fmt.Fprintf(c.App.Writer, "%s: %d paragraphs filled\n", c.String("out"), changed)
			if left := substitute.Placeholders(doc); len(left) > 0 {
				fmt.Fprintf(c.App.ErrWriter, "warning: unfilled placeholders %v\n", left)
			}
			return nil
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Render one letter per CSV row (header row uses the form field names)",
		ArgsUsage: "REQUESTS.csv",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "out-dir",
				Aliases:  []string{"o"},
				Usage:    "write letters into `DIR`",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "template-dir",
				Usage: "template `DIR` (default: configured template_dir)",
			},
			&cli.TimestampFlag{
				Name:   "date",
				Usage:  "letter date (default: today)",
				Layout: letter.DateLayout,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("exactly one CSV file is required")
			}
			f, err := os.Open(c.Args().First())
			if err != nil {
				return fmt.Errorf("open requests: %w", err)
			}
			reqs, err := letter.ReadRequests(f)
			f.Close()
			if err != nil {
				return err
			}

			dir := c.String("template-dir")
			if dir == "" {
				cfg, err := config.Load(c.String("config"))
				if err != nil {
					return err
				}
				dir = cfg.TemplateDir
			}
			store, err := templates.NewStore(dir, usedLangs(reqs)...)
			if err != nil {
				return err
			}
			if err := store.Validate(letter.Vocabulary()); err != nil {
				return err
			}

			outDir := c.String("out-dir")
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create out dir: %w", err)
			}
			date := time.Now()
			if ts := c.Timestamp("date"); ts != nil {
				date = *ts
			}

			for i, req := range reqs {
				doc, err := store.Open(req.Lang)
				if err != nil {
					return err
				}
				substitute.Document(doc, req.Mapping(date))

				name := fmt.Sprintf("%03d_%s_%s.docx", i+1, safeName(req.LastName), safeName(req.FirstName))
				path := filepath.Join(outDir, name)
				out, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", name, err)
				}
				if _, err := doc.WriteTo(out); err != nil {
					out.Close()
					return fmt.Errorf("write %s: %w", name, err)
				}
				if err := out.Close(); err != nil {
					return fmt.Errorf("close %s: %w", name, err)
				}
				fmt.Fprintln(c.App.Writer, path)
			}
			fmt.Fprintf(c.App.Writer, "%d letters written\n", len(reqs))
			return nil
		},
	}
}

func usedLangs(reqs []letter.Request) []letter.Lang {
	seen := map[letter.Lang]bool{}
	var out []letter.Lang
	for _, r := range reqs {
		if !seen[r.Lang] {
			seen[r.Lang] = true
			out = append(out, r.Lang)
		}
	}
	return out
}

// safeName keeps letters, digits and dashes so names work as file names.
func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-':
			return r
		case unicode.IsSpace(r), r == '_':
			return '-'
		default:
			return -1
		}
	}, s)
	if s == "" {
		return "x"
	}
	return s
}

func placeholdersCommand() *cli.Command {
	return &cli.Command{
		Name:      "placeholders",
		Usage:     "List the placeholders in template files and flag unknown ones",
		ArgsUsage: "FILE.docx [FILE.docx...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("at least one template file is required")
			}
			vocab := letter.Vocabulary()
			var failed bool
			for _, path := range c.Args().Slice() {
				doc, err := templates.LoadFile(path)
				if err != nil {
					return err
				}
				found := substitute.Placeholders(doc)
				fmt.Fprintf(c.App.Writer, "%s:\n", path)
				for _, p := range found {
					fmt.Fprintf(c.App.Writer, "  %s\n", p)
				}
				if err := substitute.Check(found, vocab); err != nil {
					fmt.Fprintf(c.App.Writer, "  %s\n", err)
					failed = true
				}
			}
			if failed {
				return errors.New("templates contain unmapped placeholders")
			}
			return nil
		},
	}
}

func countCommand() *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "Print how many letters have been generated",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "counter",
				Usage: "counter `FILE` (default: configured counter_path)",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.String("counter")
			if path == "" {
				cfg, err := config.Load(c.String("config"))
				if err != nil {
					return err
				}
				path = cfg.CounterPath
			}
			cnt, err := counter.Open(path)
			if err != nil {
				return err
			}
			n, err := cnt.Value()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, n)
			return nil
		},
	}
}
