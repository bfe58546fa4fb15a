// Package diff computes line-based unified diffs between two versions of a
// document, such as the file on disk and the unsaved editor buffer.
package diff

import (
	"fmt"
	"strconv"
	"strings"
)

// Op classifies a diff line.
type Op uint8

const (
	// Equal is a line present in both versions.
	Equal Op = iota

	// Delete is a line only in the old version.
	Delete

	// Insert is a line only in the new version.
	Insert
)

func (o Op) prefix() byte {
	switch o {
	case Delete:
		return '-'
	case Insert:
		return '+'
	default:
		return ' '
	}
}

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 3

// maxCells bounds the comparison table. Larger middles are reported as a
// full replacement.
const maxCells = 1 << 22

// Line is one line of a hunk.
type Line struct {
	Op Op

	// Text is the line without its line feed.
	Text string

	// NoNewline is set on a final line that has no line feed.
	NoNewline bool
}

// Hunk is a run of changes with surrounding context. Starts are 1-based.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Diff is the difference between two versions of one file.
type Diff struct {
	Path    string
	Hunks   []Hunk
	Added   int
	Removed int
}

// Compute diffs before against after with DefaultContext lines of
// context. It returns nil when the two are identical.
func Compute(path, before, after string) *Diff {
	return ComputeContext(path, before, after, DefaultContext)
}

// ComputeContext is Compute with an explicit context size.
func ComputeContext(path, before, after string, context int) *Diff {
	if before == after {
		return nil
	}
	context = max(context, 0)

	ops := compare(splitLines(before), splitLines(after))

	d := &Diff{Path: path, Hunks: group(ops, context)}
	for _, line := range ops {
		switch line.Op {
		case Insert:
			d.Added++
		case Delete:
			d.Removed++
		}
	}
	return d
}

// Empty reports whether d holds no changes.
func (d *Diff) Empty() bool {
	return d == nil || len(d.Hunks) == 0
}

// Stat returns the change counts as "+added -removed".
func (d *Diff) Stat() string {
	if d.Empty() {
		return "+0 -0"
	}
	return fmt.Sprintf("+%d -%d", d.Added, d.Removed)
}

// Unified renders d in unified diff format with a/ and b/ path prefixes.
func (d *Diff) Unified() string {
	if d.Empty() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")
	var b strings.Builder
	b.WriteString("--- a/" + path + "\n")
	b.WriteString("+++ b/" + path + "\n")

	for _, h := range d.Hunks {
		b.WriteString("@@ -" + span(h.OldStart, h.OldLines) + " +" + span(h.NewStart, h.NewLines) + " @@\n")
		for _, line := range h.Lines {
			b.WriteByte(line.Op.prefix())
			b.WriteString(line.Text)
			b.WriteByte('\n')
			if line.NoNewline {
				b.WriteString("\\ No newline at end of file\n")
			}
		}
	}
	return b.String()
}

// span formats a hunk range. An empty range names the line before it.
func span(start, count int) string {
	if count == 0 {
		start--
	}
	return strconv.Itoa(start) + "," + strconv.Itoa(count)
}

// splitLines splits s after every line feed. A trailing partial line is
// kept as its own element.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func toLine(op Op, raw string) Line {
	text, hasNewline := strings.CutSuffix(raw, "\n")
	return Line{Op: op, Text: text, NoNewline: !hasNewline}
}

// compare returns the edit script turning a into b. Common leading and
// trailing lines are matched directly; the middle uses a longest common
// subsequence table.
func compare(a, b []string) []Line {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	ops := make([]Line, 0, len(a)+len(b))
	for _, raw := range a[:prefix] {
		ops = append(ops, toLine(Equal, raw))
	}
	ops = append(ops, middle(a[prefix:len(a)-suffix], b[prefix:len(b)-suffix])...)
	for _, raw := range a[len(a)-suffix:] {
		ops = append(ops, toLine(Equal, raw))
	}
	return ops
}

func middle(a, b []string) []Line {
	n, m := len(a), len(b)
	ops := make([]Line, 0, n+m)

	if n == 0 || m == 0 || (n+1)*(m+1) > maxCells {
		for _, raw := range a {
			ops = append(ops, toLine(Delete, raw))
		}
		for _, raw := range b {
			ops = append(ops, toLine(Insert, raw))
		}
		return ops
	}

	// lcs[i*(m+1)+j] is the common subsequence length of a[i:] and b[j:].
	stride := m + 1
	lcs := make([]int32, (n+1)*stride)
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i*stride+j] = lcs[(i+1)*stride+j+1] + 1
			} else {
				lcs[i*stride+j] = max(lcs[(i+1)*stride+j], lcs[i*stride+j+1])
			}
		}
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			ops = append(ops, toLine(Equal, a[i]))
			i++
			j++
		case lcs[(i+1)*stride+j] >= lcs[i*stride+j+1]:
			ops = append(ops, toLine(Delete, a[i]))
			i++
		default:
			ops = append(ops, toLine(Insert, b[j]))
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, toLine(Delete, a[i]))
	}
	for ; j < m; j++ {
		ops = append(ops, toLine(Insert, b[j]))
	}
	return ops
}

// group cuts the edit script into hunks. Changes separated by at most
// twice the context share a hunk.
func group(ops []Line, context int) []Hunk {
	// oldAt and newAt hold the 1-based line numbers at each op.
	oldAt := make([]int, len(ops)+1)
	newAt := make([]int, len(ops)+1)
	oldLine, newLine := 1, 1
	for i, op := range ops {
		oldAt[i], newAt[i] = oldLine, newLine
		if op.Op != Insert {
			oldLine++
		}
		if op.Op != Delete {
			newLine++
		}
	}
	oldAt[len(ops)], newAt[len(ops)] = oldLine, newLine

	var hunks []Hunk
	floor := 0
	for i := 0; i < len(ops); i++ {
		if ops[i].Op == Equal {
			continue
		}

		end := i + 1
		for j := end; j < len(ops); j++ {
			if ops[j].Op != Equal {
				end = j + 1
				continue
			}
			if j-end >= 2*context {
				break
			}
		}

		start := max(i-context, floor)
		stop := min(end+context, len(ops))
		h := Hunk{OldStart: oldAt[start], NewStart: newAt[start], Lines: ops[start:stop]}
		for _, line := range h.Lines {
			if line.Op != Insert {
				h.OldLines++
			}
			if line.Op != Delete {
				h.NewLines++
			}
		}
		hunks = append(hunks, h)

		floor = stop
		i = stop - 1
	}
	return hunks
}
