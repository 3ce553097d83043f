// Package preflight provides readiness checks for the binaries and
// filesystem paths a conversion depends on.
//
// These checks run in two contexts:
//   - The encode command calls RunAll before touching any sheet. If a check
//     fails, the batch stops before any output is written.
//   - The "cbae status" command renders every Result as a health table.
package preflight
