package container

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bubbleviz/adapters/excel"
	"bubbleviz/adapters/postgres"
	"bubbleviz/adapters/zeppelin"
	"bubbleviz/internal/errors"
	"bubbleviz/ports"
)

// FileSource returns a table source for path: CSV and Excel files go through
// the spreadsheet reader, anything else is parsed as %table text.
func FileSource(path string) (ports.TableSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx", ".xlsm":
		return excel.NewDataReader(path), nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("table file %s", path))
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return zeppelin.NewSource(string(payload)), nil
}

// StartupSource returns the source configured through DATA_FILE or
// DATA_QUERY, or nil when neither is set.
func (c *Container) StartupSource() (ports.TableSource, error) {
	switch {
	case c.Config.Data.File != "":
		return FileSource(c.Config.Data.File)
	case c.Config.Data.Query != "":
		if c.DB == nil {
			return nil, errors.ConfigInvalid("DATA_QUERY requires a database connection")
		}
		return postgres.NewQuerySource(c.DB, c.Config.Data.Query), nil
	}
	return nil, nil
}
