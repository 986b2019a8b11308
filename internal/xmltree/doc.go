// Package xmltree holds an assembled course document as an arena of
// element nodes addressed by NodeID.
//
// Nodes keep their attributes in document order and carry character data
// the way mixed content needs it: Text before the first child and Tail
// after the node's own end tag. Parsing goes through xmlquery; selection
// goes through an xpath.NodeNavigator over the arena; Format pretty-prints
// with two-space indentation while leaving mixed content inline.
package xmltree
