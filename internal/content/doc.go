// Package content discovers Markdown sources in a flat directory and drives
// each one through frontmatter extraction, Markdown rendering and template
// substitution into <build-dir>/<stem>.html.
//
// Pages are processed in file-name order. With more than one worker the
// per-file pipeline runs in parallel, but results are still collected by
// discovery index, so the ContentList order never depends on scheduling.
package content
