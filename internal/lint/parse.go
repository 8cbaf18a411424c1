package lint

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Warning 1 in src/main.tex line 3: Command terminated with space.
	chktexLine = regexp.MustCompile(`^(Warning|Error|Message) (\d+) in (.+?) line (\d+): (.*)$`)
	// "src/main.tex", line 12: possible unwanted space at "{"
	lacheckLine = regexp.MustCompile(`^"(.+?)", line (\d+): (.*)$`)
)

// parseOutput turns tool output into issues. Every non-empty line is one
// warning; recognised formats are split into rule, line and message.
func parseOutput(tool, file, output string) []Issue {
	var issues []Issue
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		issue := Issue{File: file, Tool: tool, Message: line}
		switch tool {
		case ToolChktex:
			if m := chktexLine.FindStringSubmatch(line); m != nil {
				issue.Rule = m[2]
				issue.Line, _ = strconv.Atoi(m[4])
				issue.Message = m[5]
			}
		case ToolLacheck:
			if m := lacheckLine.FindStringSubmatch(line); m != nil {
				issue.Line, _ = strconv.Atoi(m[2])
				issue.Message = m[3]
			}
		}
		issues = append(issues, issue)
	}
	return issues
}
