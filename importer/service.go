package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"carbonreport/config"
)

// Load reads one sheet of a source file, inferring the reader from the file
// extension unless format is set.
func Load(path, format, sheet string) (*Table, error) {
	reader, err := readerForPath(path, format)
	if err != nil {
		return nil, err
	}
	return reader.Read(path, sheet)
}

// Sheets lists the sheet names of a source file.
func Sheets(path, format string) ([]string, error) {
	reader, err := readerForPath(path, format)
	if err != nil {
		return nil, err
	}
	return reader.Sheets(path)
}

func readerForPath(path, format string) (Reader, error) {
	sourceFormat, err := inferFormat(path, format)
	if err != nil {
		return nil, err
	}
	return ReaderForFormat(sourceFormat)
}

func inferFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv", "txt":
		return "csv", nil
	case "xlsx", "xlsm":
		return "excel", nil
	case "xls":
		return "xls", nil
	default:
		return "", fmt.Errorf("unsupported file extension for %s", path)
	}
}

// MatchPresetByTemplate returns the first preset of the given energy type
// whose file template matches the base name or the full path. An empty
// energy type matches presets of any type.
func MatchPresetByTemplate(path, energyType string, presets []config.MappingPreset) (config.MappingPreset, bool) {
	baseName := filepath.Base(path)
	for _, preset := range presets {
		template := strings.TrimSpace(preset.FileTemplate)
		if template == "" {
			continue
		}
		if energyType != "" {
			typ, err := preset.Type()
			if err != nil || string(typ) != energyType {
				continue
			}
		}
		matchesBase, err := filepath.Match(template, baseName)
		if err == nil && matchesBase {
			return preset, true
		}
		matchesFull, err := filepath.Match(template, path)
		if err == nil && matchesFull {
			return preset, true
		}
	}
	return config.MappingPreset{}, false
}
