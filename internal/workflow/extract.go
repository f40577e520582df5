package workflow

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExtractCrons returns the cron strings declared under a workflow's schedule
// trigger, in document order. A file can declare zero, one, or many. Content
// that is not a workflow yields nil; content that is not even YAML falls
// back to a line scan so a templated or truncated file does not lose its
// extractable schedules. This function never fails: one bad file must not
// abort a whole run.
func ExtractCrons(content []byte) []string {
	if crons, ok := fromYAML(content); ok {
		return crons
	}
	return fromLines(content)
}

// fromYAML walks the decoded document for on.schedule[].cron entries. The
// second return reports whether the content decoded as YAML at all; when it
// did, the result is authoritative even if empty.
func fromYAML(content []byte) ([]string, bool) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, false
	}
	if len(root.Content) == 0 {
		return nil, true
	}

	doc := deref(root.Content[0])
	if doc.Kind != yaml.MappingNode {
		return nil, true
	}

	// Authors write the trigger block as "on:", which YAML 1.1 readers
	// resolve to boolean true. Matching the raw key text covers both
	// spellings.
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i].Value
		if key != "on" && key != "true" {
			continue
		}
		return cronsFromTrigger(deref(doc.Content[i+1])), true
	}

	// Search text-match fragments often carry a bare schedule block with
	// the surrounding trigger cut off.
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "schedule" {
			continue
		}
		return cronsFromSchedule(deref(doc.Content[i+1])), true
	}
	return nil, true
}

func cronsFromTrigger(trigger *yaml.Node) []string {
	// "on: push" and "on: [push, pull_request]" carry no schedule.
	if trigger.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(trigger.Content); i += 2 {
		if trigger.Content[i].Value != "schedule" {
			continue
		}
		return cronsFromSchedule(deref(trigger.Content[i+1]))
	}
	return nil
}

func cronsFromSchedule(schedule *yaml.Node) []string {
	if schedule.Kind != yaml.SequenceNode {
		return nil
	}
	var crons []string
	for _, entry := range schedule.Content {
		entry = deref(entry)
		if entry.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i+1 < len(entry.Content); i += 2 {
			if entry.Content[i].Value != "cron" {
				continue
			}
			value := deref(entry.Content[i+1])
			if value.Kind != yaml.ScalarNode {
				continue
			}
			if cron := strings.TrimSpace(value.Value); cron != "" {
				crons = append(crons, cron)
			}
		}
	}
	return crons
}

func deref(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias
	}
	return n
}

var cronLine = regexp.MustCompile(`^\s*-?\s*cron\s*:\s*(.+)$`)

// fromLines is the fallback for content that failed YAML decoding.
func fromLines(content []byte) []string {
	var crons []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if cron, ok := scanLine(scanner.Text()); ok {
			crons = append(crons, cron)
		}
	}
	return crons
}

// scanLine reports the cron value declared on a single line, if any.
func scanLine(line string) (string, bool) {
	m := cronLine.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	rest := strings.TrimSpace(m[1])
	if rest == "" {
		return "", false
	}

	if quote := rest[0]; quote == '"' || quote == '\'' {
		end := strings.IndexByte(rest[1:], quote)
		if end < 0 {
			return "", false
		}
		value := strings.TrimSpace(rest[1 : 1+end])
		return value, value != ""
	}

	// Unquoted value: strip a trailing comment.
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = strings.TrimSpace(rest[:i])
	}
	return rest, rest != ""
}
