package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/exprbridge/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// ValidateRegistry checks every registered function signature. Parameters
// must be named and typed; dynamic parameters are allowed but logged since
// they disable argument conversion.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Names() {
		fn, _ := r.Lookup(name)

		params := fn.Params()
		if vp := fn.VarParam(); vp != nil {
			params = append(params, *vp)
		}

		for i, p := range params {
			if p.Name == "" {
				errs = append(errs, fmt.Sprintf("function '%s': parameter %d has no name", name, i))
			}
			if p.Type == cty.NilType {
				errs = append(errs, fmt.Sprintf("function '%s': parameter '%s' has no type", name, p.Name))
				continue
			}
			if p.Type.Equals(cty.DynamicPseudoType) {
				logger.Debug("Function parameter accepts any type; arguments are passed through unconverted.", "function", name, "param", p.Name)
			}
		}

		if len(fn.Params()) == 0 && fn.VarParam() == nil {
			if _, err := fn.ReturnType(nil); err != nil {
				errs = append(errs, fmt.Sprintf("function '%s': cannot determine return type: %v", name, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.", "functions", r.Len())
	return nil
}
