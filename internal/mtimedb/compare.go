package mtimedb

// compareName orders a stored component name against the start of a query
// path. A '/' in the query ends the component, so "foo" matches both "foo" and
// "foo/bar". On a match it returns 0 and the number of query bytes the
// component consumed; otherwise the sign of the result orders name relative to
// the query's component.
func compareName(name []byte, query string) (cmp int, consumed int) {
	for i := 0; ; i++ {
		var nc, qc byte
		if i < len(name) {
			nc = name[i]
		}
		if i < len(query) {
			qc = query[i]
		}
		if nc == qc {
			if nc == 0 {
				return 0, i
			}
			continue
		}
		if qc == '/' {
			if nc == 0 {
				return 0, i
			}
			qc = 0
		}
		return int(nc) - int(qc), i
	}
}
