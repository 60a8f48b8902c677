package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goliatone/go-productform/pkg/navigation"
	"github.com/goliatone/go-productform/pkg/render"
	"github.com/goliatone/go-productform/pkg/schema"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [paths...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint form documents for configuration errors.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"pkg/schema/product.yaml"}
	}

	var violations []violation
	for _, path := range paths {
		violations = append(violations, lintFile(path)...)
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].file == violations[j].file {
				if violations[i].location == violations[j].location {
					return violations[i].message < violations[j].message
				}
				return violations[i].location < violations[j].location
			}
			return violations[i].file < violations[j].file
		})
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
		}
		os.Exit(1)
	}
}

func lintFile(path string) []violation {
	s, err := schema.LoadFile(path)
	if err != nil {
		return []violation{fromError(path, err)}
	}
	if _, err := render.ResolveAll(s); err != nil {
		return []violation{fromError(path, err)}
	}

	var result []violation
	seen := make(map[string]bool)
	for _, action := range s.Form().Actions {
		location := "form.actions." + action.Name
		if seen[action.Name] {
			result = append(result, violation{file: path, location: location, message: "duplicate action"})
		}
		seen[action.Name] = true
		if action.Name == navigation.ActionCancel {
			result = append(result, violation{file: path, location: location, message: "cancel is reserved and never submits"})
		}
	}

	for _, field := range s.DataFields() {
		if field.Required && field.Label == "" {
			result = append(result, violation{
				file:     path,
				location: "fields." + field.Name,
				message:  "required field has no label",
			})
		}
	}
	return result
}

func fromError(path string, err error) violation {
	var cfgErr *schema.ConfigurationError
	if errors.As(err, &cfgErr) {
		location := "fields"
		if cfgErr.Field != "" {
			location = "fields." + cfgErr.Field
		}
		return violation{file: path, location: location, message: cfgErr.Error()}
	}
	return violation{file: path, location: "document", message: err.Error()}
}
