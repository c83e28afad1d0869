package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DeclarativeFilenames is the set of candidate filenames recognized as the
// declarative (INI-like) manifest form. Discovery (§4.2) matches against
// these via glob.
var DeclarativeFilenames = []string{"setup.cfg", "tox.ini", ".ptr.cfg"}

// ToolSection is the name of the INI section this tool reads its options
// from, e.g. "[ptr]".
const ToolSection = "ptr"

// parseINISections reads an INI-like file and returns its sections as raw
// string key/value maps (no type coercion yet -- that is coercion.go's job).
// Multi-line values are supported via indented continuation lines, matching
// the classic setup.cfg/configparser convention the declarative form is
// modeled on.
func parseINISections(path string) (map[string]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sections := make(map[string]map[string]string)
	var currentSection string
	var currentKey string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := scanner.Text()
		trimmed := strings.TrimSpace(raw)

		if trimmed == "" {
			currentKey = ""
			continue
		}
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}

		// Continuation line: starts with whitespace, and we have an open key.
		if (raw[0] == ' ' || raw[0] == '\t') && currentKey != "" && currentSection != "" {
			sections[currentSection][currentKey] += "\n" + trimmed
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			currentSection = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if _, ok := sections[currentSection]; !ok {
				sections[currentSection] = make(map[string]string)
			}
			currentKey = ""
			continue
		}

		idx := strings.Index(trimmed, "=")
		if idx < 0 {
			// Not a recognized line shape; ignore rather than fail the
			// whole file, matching the Loader's warn-and-skip posture.
			currentKey = ""
			continue
		}
		if currentSection == "" {
			return nil, fmt.Errorf("%s: key %q outside any section", path, trimmed[:idx])
		}
		key := strings.TrimSpace(trimmed[:idx])
		val := strings.TrimSpace(trimmed[idx+1:])
		sections[currentSection][key] = val
		currentKey = key
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}

// LoadDeclarative parses path as a declarative manifest and, if it contains
// a [ptr] section, returns the raw option map for that section. A nil map
// (with no error) means the file parsed cleanly but carries no tool section
// -- per §4.1, such a file is not a Project.
func LoadDeclarative(path string) (map[string]string, error) {
	sections, err := parseINISections(path)
	if err != nil {
		return nil, err
	}
	section, ok := sections[ToolSection]
	if !ok {
		return nil, nil
	}
	return section, nil
}
