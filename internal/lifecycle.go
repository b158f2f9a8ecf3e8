package internal

// runLifecycle executes the matched action between the hooks resolved for
// its controller: Begin, every Auto, the action, then End. The first failure
// skips the remaining steps except End, which always runs. End does not
// affect the result.
func runLifecycle(c *Context) bool {
	ci := c.action.controller
	ok := true

	if ci.begin != nil {
		ok = c.execute(ci.begin) == nil
	}
	if ok {
		for _, auto := range ci.autos {
			if c.execute(auto) != nil {
				ok = false
				break
			}
		}
	}
	if ok {
		ok = c.execute(c.action) == nil
	}
	if ci.end != nil {
		_ = c.execute(ci.end)
	}
	return ok
}
