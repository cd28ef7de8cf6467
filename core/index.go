package core

import (
	"strconv"

	"github.com/caasmo/actiondispatch/router"
)

// index returns a matcher for the current table. Without an index cache it
// is rebuilt on every call; building is a pure function of the table.
func (d *Dispatcher) index() (router.Matcher, error) {
	if d.indexCache == nil {
		routes, _ := d.table.snapshot()
		return d.build(routes)
	}

	key := strconv.FormatUint(d.table.Generation(), 10)
	if m, ok := d.indexCache.Get(key); ok {
		return m, nil
	}

	v, err, _ := d.flight.Do(key, func() (any, error) {
		routes, gen := d.table.snapshot()
		m, err := d.build(routes)
		if err != nil {
			return nil, err
		}
		d.indexCache.Set(strconv.FormatUint(gen, 10), m, 1)
		d.logger.Debug("dispatch: route index built", "generation", gen, "routes", len(routes))
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(router.Matcher), nil
}
