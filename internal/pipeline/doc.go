// Package pipeline brings a project to a self-consistent state that its
// active format can save.
//
// Normalize runs the same eight steps every time:
//
//  1. validate the structural invariants (unique sprite names, sprites and
//     actors in sync);
//  2. normalize each scriptable: select a costume, sort scripts, normalize
//     blocks;
//  3. validate watchers;
//  4. give every variable and list without a watcher a hidden one;
//  5. canonicalize line endings in the project notes;
//  6. re-specialize every block for the active format, running block
//     workarounds where the format has no spelling;
//  7. run the workaround of every feature the format does not declare;
//  8. run the normalizer of every feature the format declares.
//
// Steps 6 and 7 report what they changed as model.Notice values. Every
// notice in the returned slice describes a change that has already been
// applied, and the slice is complete when Normalize returns.
package pipeline
