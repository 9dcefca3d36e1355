// Package manifest reads block vocabularies written in HCL.
//
// Format modules describe the blocks they can read and write in embedded
// `.hcl` files instead of Go literals:
//
//	block "say:duration:elapsed:from:" {
//	  category = "looks"
//	  shape    = "stack"
//	  text     = "say %s for %n secs"
//	  defaults = ["Hello!", 2]
//	}
//
// The label is the command the format stores. `match` optionally names a
// command registered earlier by another format; the registry merges the two
// into one canonical block type.
//
// The text template uses these placeholders:
//
//	%n       number
//	%s       string
//	%b       boolean
//	%c       color
//	%m.kind  read-only menu of the given kind
//	%d.kind  number menu of the given kind
//	%i.kind  inline value (the name read by variable and list reporters)
//	%S       stack of blocks
//	%B       custom block definition
//	%%       a literal percent sign
//
// `defaults` lists the default argument of each insert in order; missing or
// null entries take the default of the insert shape.
package manifest
