package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"bubbleviz/adapters/postgres"
	"bubbleviz/domain/chart"
	"bubbleviz/domain/table"
	"bubbleviz/internal/columnselector"
	"bubbleviz/internal/container"
	"bubbleviz/internal/errors"
	"bubbleviz/ports"

	"github.com/spf13/cobra"
)

// roleFlags names the column chosen for each role. With none set the roles
// are suggested from the table's column kinds.
type roleFlags struct {
	names map[chart.Role]*string
}

func addRoleFlags(cmd *cobra.Command) *roleFlags {
	rf := &roleFlags{names: make(map[chart.Role]*string)}
	rf.names[chart.RoleXAxis] = cmd.Flags().String("x", "", "column for the x axis")
	rf.names[chart.RoleYAxis] = cmd.Flags().String("y", "", "column for the y axis")
	rf.names[chart.RoleZAxis] = cmd.Flags().String("z", "", "column for the bubble size")
	rf.names[chart.RoleCategory] = cmd.Flags().String("category", "", "column to group bubbles by")
	return rf
}

func (rf *roleFlags) empty() bool {
	for _, name := range rf.names {
		if *name != "" {
			return false
		}
	}
	return true
}

// apply selects the named columns of tbl on tr
func (rf *roleFlags) apply(tr ports.Transformation, tbl *table.Table) error {
	if rf.empty() {
		suggested := columnselector.Suggest(tbl)
		for _, role := range chart.Roles {
			if col := suggested.Get(role); col != nil {
				if err := tr.Select(role, *col); err != nil {
					return err
				}
			}
		}
		return nil
	}
	names := make(map[chart.Role]string, len(rf.names))
	for role, name := range rf.names {
		if *name != "" {
			names[role] = *name
		}
	}
	return tr.SelectAll(tbl, names)
}

// input is one table to render, named for its output file
type input struct {
	name   string
	source ports.TableSource
}

// resolveInputs turns file arguments and an optional query into table sources
func resolveInputs(ctx context.Context, files []string, query, databaseURL string) ([]input, func(), error) {
	inputs := make([]input, 0, len(files)+1)
	for _, f := range files {
		src, err := container.FileSource(f)
		if err != nil {
			return nil, nil, err
		}
		inputs = append(inputs, input{name: baseName(f), source: src})
	}

	cleanup := func() {}
	if query != "" {
		if databaseURL == "" {
			return nil, nil, errors.ConfigInvalid("--sql needs --database-url or DATABASE_URL")
		}
		db, err := postgres.Connect(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { db.Close() }
		inputs = append(inputs, input{name: "query", source: postgres.NewQuerySource(db, query)})
	}

	if len(inputs) == 0 {
		cleanup()
		return nil, nil, errors.InvalidInput("no input tables: pass files or --sql")
	}
	uniqueNames(inputs)
	return inputs, cleanup, nil
}

// uniqueNames suffixes repeated input names with -1, -2, ... so every input
// gets its own output file. Names compare case-insensitively.
func uniqueNames(inputs []input) {
	taken := make(map[string]bool, len(inputs))
	for i := range inputs {
		name := inputs[i].name
		for n := 1; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s-%d", inputs[i].name, n)
		}
		taken[strings.ToLower(name)] = true
		inputs[i].name = name
	}
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
