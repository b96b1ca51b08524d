package naming

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultContainer is the target container extension, without the dot.
const DefaultContainer = "mp4"

// fallbackStem is used when stripping the source extension leaves nothing.
const fallbackStem = "untitled"

// DefaultSourceExtensions lists the input extensions stripped when deriving
// the file stem. Inputs with other extensions keep their full leaf name.
var DefaultSourceExtensions = []string{".webm", ".mkv", ".avi", ".mov", ".m4v"}

// PathSet tracks output paths already claimed by other jobs, history entries,
// or earlier members of the same batch.
type PathSet map[string]struct{}

// NewPathSet builds a set from the given paths.
func NewPathSet(paths ...string) PathSet {
	set := make(PathSet, len(paths))
	for _, p := range paths {
		set.Add(p)
	}
	return set
}

// Add claims a path.
func (s PathSet) Add(path string) {
	s[path] = struct{}{}
}

// Contains reports whether a path is already claimed.
func (s PathSet) Contains(path string) bool {
	_, ok := s[path]
	return ok
}

// Clone returns an independent copy of the set.
func (s PathSet) Clone() PathSet {
	out := make(PathSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Request carries every input of a single path resolution.
//
// Index is the explicit numeric index for forced numbering and for the
// {number} placeholder; it is ignored for suffixing unless ForceNumber is
// set. BatchSize, when positive, sizes the zero-pad width; otherwise the
// width falls back to a heuristic derived from the claimed-path snapshot.
type Request struct {
	InputPath        string
	OutputDirectory  string
	UseSubdirectory  bool
	SubdirectoryName string
	Template         string
	Container        string
	SourceExtensions []string
	Claimed          PathSet
	Index            int
	BatchSize        int
	ForceNumber      bool
}

// Resolve computes the destination path for one input file. It is a pure,
// single-shot function: no filesystem access, no errors, every input yields
// some valid path.
func Resolve(req Request) string {
	template := Sanitize(req.Template)
	stem := Stem(req.InputPath, req.SourceExtensions)
	width := padWidth(req.BatchSize, len(req.Claimed))
	index := req.Index
	if index < 0 {
		index = 0
	}
	number := fmt.Sprintf("%0*d", width, index)

	name := strings.ReplaceAll(template, "{"+PlaceholderName+"}", stem)
	if HasNumberPlaceholder(template) {
		name = strings.ReplaceAll(name, "{"+PlaceholderNumber+"}", number)
	} else if req.ForceNumber {
		name += "_" + number
	}

	container := strings.TrimPrefix(strings.TrimSpace(req.Container), ".")
	if container == "" {
		container = DefaultContainer
	}
	return filepath.Join(baseDir(req), name+"."+container)
}

// ResolveAvailable runs the snapshot collision policy: without an explicit
// request for numbering it first tries index 0 unforced, then retries with
// forced numbering at increasing indices until the candidate is absent from
// the claimed set. A forced request starts at its own index instead. Live
// existence checks remain the caller's job.
func ResolveAvailable(req Request) string {
	start := 0
	if req.ForceNumber {
		if req.Index > 0 {
			start = req.Index
		}
	} else {
		first := req
		first.Index = 0
		candidate := Resolve(first)
		if !req.Claimed.Contains(candidate) {
			return candidate
		}
	}

	forced := req
	forced.ForceNumber = true
	for idx := start; ; idx++ {
		forced.Index = idx
		candidate := Resolve(forced)
		if !req.Claimed.Contains(candidate) {
			return candidate
		}
	}
}

// Stem derives the base file name for template substitution: the input's
// leaf name minus a recognized source extension. Unrecognized extensions
// keep the full leaf name; an empty result falls back to a fixed literal.
func Stem(inputPath string, sourceExtensions []string) string {
	leaf := filepath.Base(strings.TrimRight(inputPath, "/"))
	if leaf == "." || leaf == string(filepath.Separator) {
		return fallbackStem
	}
	if len(sourceExtensions) == 0 {
		sourceExtensions = DefaultSourceExtensions
	}
	ext := strings.ToLower(filepath.Ext(leaf))
	for _, known := range sourceExtensions {
		if ext != "" && ext == strings.ToLower(strings.TrimSpace(known)) {
			leaf = leaf[:len(leaf)-len(ext)]
			break
		}
	}
	if strings.TrimSpace(leaf) == "" {
		return fallbackStem
	}
	return leaf
}

func baseDir(req Request) string {
	dir := strings.TrimSpace(req.OutputDirectory)
	if dir == "" {
		dir = filepath.Dir(req.InputPath)
	}
	for len(dir) > 1 && strings.HasSuffix(dir, string(filepath.Separator)) {
		dir = strings.TrimSuffix(dir, string(filepath.Separator))
	}
	if req.UseSubdirectory {
		sub := strings.TrimSpace(req.SubdirectoryName)
		if sub != "" {
			dir = filepath.Join(dir, sub)
		}
	}
	return dir
}

// padWidth sizes the zero-pad for numeric indices: enough digits for the
// largest expected index, derived from the batch size when known, otherwise
// from the snapshot size plus headroom for retries.
func padWidth(batchSize, claimed int) int {
	total := batchSize
	if total <= 0 {
		total = claimed + 10
	}
	if total <= 1 {
		return 1
	}
	return len(strconv.Itoa(total - 1))
}
