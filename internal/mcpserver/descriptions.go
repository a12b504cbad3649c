package mcpserver

func describeProject() string {
	return `Run the full project analysis: structure, dependencies, complexity, and code smells in one report.

Use this for a first look at an unfamiliar codebase. The report includes per-language line counts, top-level directory purposes, declared dependencies across Cargo/npm/PyPI/Go manifests, lexical complexity hotspots, and heuristic smell findings, plus any warnings for files that could not be fully analyzed.`
}

func describeStructure() string {
	return `Summarize project layout: file and line totals, per-language statistics, and top-level directory purposes.

Fast and read-only; no code content is interpreted beyond language classification and line counting.`
}

func describeDependencies() string {
	return `Extract declared dependencies from package manifests (Cargo.toml, package.json, pyproject.toml, requirements.txt, go.mod).

Each record carries its ecosystem, raw version constraint, and scope (runtime, dev, optional). Duplicate declarations across nested manifests are collapsed; the last manifest in path order wins.`
}

func describeComplexity() string {
	return `Score per-file lexical complexity: branch keyword count, maximum nesting depth, and longest function span.

Scores are heuristic and language-aware but AST-free, so they are stable and cheap even on very large trees. The summary includes mean, median, and 90th percentile.`
}

func describeSmells() string {
	return `Detect heuristic code smells: long functions, deep nesting, duplicated blocks, magic numbers in conditions, and long parameter lists.

Findings are graded low/medium/high and sorted most severe first. Thresholds come from the loupe config file when present.`
}
