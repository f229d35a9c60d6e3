// Package value converts between command-line text and guest values.
//
// Parse accepts decimal text for the four numeric kinds only. Render is
// total over every Kind and never fails:
//
//	v, err := value.Parse("-42", value.KindI32)
//	fmt.Println(value.Render(v)) // -42
//
// Values travel to and from the engine as uint64 stack slots; see Encode
// and Decode. A v128 occupies two slots, low lane first.
package value
