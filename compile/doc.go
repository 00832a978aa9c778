// Package compile derives construction plans from struct tags, so the
// head/tail split lives next to the struct definition instead of in a
// hand-written field list.
//
//	type Conn struct {
//		incrstruct.Header
//		Endpoint string
//		buf      []byte
//		view     *[]byte `incr:"tail"`
//		scratch  int     `incr:"-"`
//	}
//
//	var connPlan = compile.MustPlan[Conn]()
//
// Untagged fields are head fields; `incr:"tail"` marks a tail field;
// `incr:"-"` leaves a field unmanaged. An embedded incrstruct.Header is
// recognized and skipped. Fields whose types implement
// incrstruct.Dropper get a destructor wired into the plan
// automatically. Derived plans are cached per type.
package compile
