package xank

import "testing"

func FuzzEval(f *testing.F) {
	f.Add("2 + 3 * 4")
	f.Add("max(1.5, 2) << 3")
	f.Add("2 3")
	f.Add("1 +")
	f.Add("log(8, 2) / 0")
	f.Fuzz(func(t *testing.T, s string) {
		ev := initialized(t)
		if ev.Parse(s) != nil {
			return
		}
		r, err := ev.Evaluate()
		if ev.Live() != 0 {
			t.Errorf("evaluating %q leaked %d atoms", s, ev.Live())
		}
		if err == nil && r.Kind() == NumberNone {
			t.Errorf("%q gave no value and no error", s)
		}
	})
}
