// Package loader assembles a course tree from its root document and the
// fragment files it references.
//
// A node <tag url_name="x"> refers to <base>/<tag>/x.xml when that file
// exists. The loader parses such fragments into the same arena, merges
// same-tag fragments into the referencing node and appends the rest as
// children. It never deletes anything; consumed fragments are reported
// so the commit step can remove them.
package loader
