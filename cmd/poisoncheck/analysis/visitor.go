package analysis

import (
	"fmt"
	"go/ast"
	"go/token"
)

// acquireMethods maps guard-acquiring method names to whether the
// resulting guard participates in the commit protocol. Read guards and
// unchecked guards are release-only: not committing them is normal.
var acquireMethods = map[string]bool{
	"Guard":          true,
	"GuardUnchecked": false,
	"Lock":           true,
	"TryLock":        true,
	"RLock":          false,
}

// releaseMethods are the calls that end a guard's region.
var releaseMethods = map[string]bool{
	"Release": true,
	"Unlock":  true,
}

// acquisition records one guard-producing call found in pass 1.
type acquisition struct {
	name       string    // local variable holding the guard
	method     string    // acquiring method name
	pos        token.Pos // position of the call
	released   bool
	committed  bool
	escaped    bool
	wantCommit bool
}

// checkFunc runs the two-pass analysis over a single function body and
// appends findings to report.
//
// Pass 1 walks the body recording guard acquisitions. Pass 2 walks it
// again matching Release/Unlock/Commit calls and escape sites against
// the recorded guards. Keeping the passes separate mirrors the
// record-then-apply structure used for AST rewriting and avoids
// reasoning about statement order during the walk: a deferred Release
// textually precedes the work it cleans up after.
func checkFunc(fset *token.FileSet, fn *ast.FuncDecl, report *Report) {
	// Pass 1: record acquisitions.
	var acquired []*acquisition
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		assign, ok := n.(*ast.AssignStmt)
		if !ok || len(assign.Rhs) != 1 {
			return true
		}
		call, ok := assign.Rhs[0].(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		wantCommit, ok := acquireMethods[sel.Sel.Name]
		if !ok {
			return true
		}

		// The guard is the first assignment target; Guard/Lock
		// return (guard, error), TryLock (guard, ok, error),
		// GuardUnchecked just the guard.
		name, ok := identName(assign.Lhs[0])
		if !ok {
			return true
		}
		report.Stats.GuardsSeen++
		if name == "_" {
			report.Diagnostics = append(report.Diagnostics, newDiagnostic(
				fset, call.Pos(), SeverityError,
				fmt.Sprintf("guard from %s is discarded", sel.Sel.Name),
				"assign the guard and release it on every exit path",
			))
			return true
		}
		acquired = append(acquired, &acquisition{
			name:       name,
			method:     sel.Sel.Name,
			pos:        call.Pos(),
			wantCommit: wantCommit,
		})
		return true
	})

	if len(acquired) == 0 {
		return
	}

	// Pass 2: match releases, commits and escapes.
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}

		if sel, ok := call.Fun.(*ast.SelectorExpr); ok {
			if recv, ok := identName(sel.X); ok {
				for _, a := range acquired {
					if a.name != recv {
						continue
					}
					switch {
					case releaseMethods[sel.Sel.Name]:
						a.released = true
					case sel.Sel.Name == "Commit":
						a.committed = true
					}
				}
			}
		}

		// A guard passed as an argument escapes to the callee.
		for _, arg := range call.Args {
			if name, ok := identName(arg); ok {
				for _, a := range acquired {
					if a.name == name {
						a.escaped = true
					}
				}
			}
		}
		return true
	})

	// Guards that leave via return statements escape too.
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		ret, ok := n.(*ast.ReturnStmt)
		if !ok {
			return true
		}
		for _, res := range ret.Results {
			if name, ok := identName(res); ok {
				for _, a := range acquired {
					if a.name == name {
						a.escaped = true
					}
				}
			}
		}
		return true
	})

	for _, a := range acquired {
		switch {
		case a.released:
			report.Stats.GuardsReleased++
		case a.escaped:
			report.Stats.GuardsEscaped++
		}
		if a.committed {
			report.Stats.GuardsCommitted++
		}
		if a.escaped {
			continue
		}

		if !a.released {
			report.Diagnostics = append(report.Diagnostics, newDiagnostic(
				fset, a.pos, SeverityError,
				fmt.Sprintf("guard %q from %s is never released", a.name, a.method),
				fmt.Sprintf("defer %s.%s() immediately after acquiring", a.name, releaseName(a.method)),
			))
			continue
		}
		if a.wantCommit && !a.committed {
			report.Diagnostics = append(report.Diagnostics, newDiagnostic(
				fset, a.pos, SeverityWarning,
				fmt.Sprintf("guard %q from %s is released but never committed; every exit path will poison", a.name, a.method),
				fmt.Sprintf("call %s.Commit() once the protected work has succeeded, or use the With closure form", a.name),
			))
		}
	}
}

// releaseName returns the release method matching an acquiring method:
// poison-package guards use Release, lock-package guards use Unlock.
func releaseName(acquire string) string {
	if acquire == "Guard" || acquire == "GuardUnchecked" {
		return "Release"
	}
	return "Unlock"
}

// identName unwraps an identifier expression, returning its name.
func identName(expr ast.Expr) (string, bool) {
	id, ok := expr.(*ast.Ident)
	if !ok {
		return "", false
	}
	return id.Name, true
}
