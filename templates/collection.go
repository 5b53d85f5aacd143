package templates

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Collection is an ordered set of templates sharing one binning. It
// supplies the starting yields, nuisance parameters and inverse
// correlation matrices of a fit, and computes the per-template bin
// fractions as a function of the nuisance parameters.
//
// The accessors never mutate collection state, so a Collection may be
// read concurrently once all templates have been added.
type Collection struct {
	numBins   int
	templates []*Template
	index     map[string]int
}

// NewCollection creates an empty collection for the given binning.
func NewCollection(numBins int) (*Collection, error) {
	if numBins <= 0 {
		return nil, fmt.Errorf("templates: number of bins must be positive, got %d", numBins)
	}
	return &Collection{
		numBins: numBins,
		index:   make(map[string]int),
	}, nil
}

// Add appends a template to the collection. The template must match the
// collection binning and carry an id not used by an earlier template.
func (c *Collection) Add(t *Template) error {
	if t.NumBins() != c.numBins {
		return fmt.Errorf("templates: template %q has %d bins, collection has %d", t.ID(), t.NumBins(), c.numBins)
	}
	if _, ok := c.index[t.ID()]; ok {
		return fmt.Errorf("templates: duplicate template id %q", t.ID())
	}
	c.index[t.ID()] = len(c.templates)
	c.templates = append(c.templates, t)
	return nil
}

// NumBins returns the number of bins shared by all templates.
func (c *Collection) NumBins() int {
	return c.numBins
}

// NumTemplates returns the number of templates in the collection.
func (c *Collection) NumTemplates() int {
	return len(c.templates)
}

// TemplateIDs returns the template identifiers in insertion order.
func (c *Collection) TemplateIDs() []string {
	ids := make([]string, len(c.templates))
	for i, t := range c.templates {
		ids[i] = t.ID()
	}
	return ids
}

// YieldValues returns the current yield of each template, in template
// order. These are the starting yields of a fit.
func (c *Collection) YieldValues() []float64 {
	yields := make([]float64, len(c.templates))
	for i, t := range c.templates {
		yields[i] = t.yield
	}
	return yields
}

// NuissParamValues returns the current nuisance-parameter values,
// template-major and bin-minor: all parameters of the first template,
// then all parameters of the second, and so on.
func (c *Collection) NuissParamValues() []float64 {
	nuiss := make([]float64, 0, len(c.templates)*c.numBins)
	for _, t := range c.templates {
		nuiss = append(nuiss, t.nuiss...)
	}
	return nuiss
}

// InvCorrMats returns the inverse bin-to-bin correlation matrix of each
// template, in template order. The matrices are the templates' cached
// copies and must not be modified by the caller.
func (c *Collection) InvCorrMats() []*mat.Dense {
	mats := make([]*mat.Dense, len(c.templates))
	for i, t := range c.templates {
		mats[i] = t.invCorr
	}
	return mats
}

// SetYield overrides the current yield of the named template. The value
// becomes the template's starting yield in subsequently constructed cost
// functions.
func (c *Collection) SetYield(id string, yield float64) error {
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("templates: unknown template id %q", id)
	}
	if yield < 0 {
		return fmt.Errorf("templates: template %q yield must be non-negative, got %v", id, yield)
	}
	c.templates[i].yield = yield
	return nil
}

// SetNuissParams overrides the current nuisance-parameter values of the
// named template.
func (c *Collection) SetNuissParams(id string, nuissParams []float64) error {
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("templates: unknown template id %q", id)
	}
	if len(nuissParams) != c.numBins {
		return fmt.Errorf("templates: template %q got %d nuisance parameters for %d bins", id, len(nuissParams), c.numBins)
	}
	copy(c.templates[i].nuiss, nuissParams)
	return nil
}

// BinFractions returns the numTemplates x numBins matrix of bin
// fractions. A nil nuisance vector gives the nominal fractions; otherwise
// nuissParams must hold numTemplates*numBins values in template-major,
// bin-minor order, and each template's fractions are computed as
//
//	f_ik = v_ik*(1 + theta_ik*eps_ik) / sum_j v_jk*(1 + theta_jk*eps_jk)
//
// so that every row sums to one. The call is pure: collection state is
// never modified, and each call returns a freshly allocated matrix.
func (c *Collection) BinFractions(nuissParams []float64) (*mat.Dense, error) {
	if len(c.templates) == 0 {
		return nil, fmt.Errorf("templates: collection has no templates")
	}
	if nuissParams != nil && len(nuissParams) != len(c.templates)*c.numBins {
		return nil, fmt.Errorf("templates: got %d nuisance parameters, want %d", len(nuissParams), len(c.templates)*c.numBins)
	}
	fractions := mat.NewDense(len(c.templates), c.numBins, nil)
	for k, t := range c.templates {
		var theta []float64
		if nuissParams != nil {
			theta = nuissParams[k*c.numBins : (k+1)*c.numBins]
		}
		t.fractionsInto(fractions.RawRowView(k), theta)
	}
	return fractions, nil
}
