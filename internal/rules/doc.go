// Package rules parses and holds detection rules. A rule is a named regular
// expression with optional tags and a base confidence, written one per line as
//
//	Name::Pattern::tag1,tag2::confidence
//
// The bundled defaults and any user supplied rule files share the same parser
// and are concatenated into one flat list.
package rules
