// Package engine contains the core scanning logic for lss. It walks the
// working tree and the history of every repository under the scan root,
// matches lines against the rule set, and returns filtered, ordered findings.
// This package is internal; external consumers should use the stable facade
// in pkg/core.
package engine
