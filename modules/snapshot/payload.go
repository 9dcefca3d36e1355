package snapshot

// schemaVersion is bumped whenever the payload layout changes.
const schemaVersion uint16 = 1

// payload is the msgpack document of a snapshot. It mirrors the model
// closely; block types are stored by command, custom block types in a
// table shared by every scriptable.
type payload struct {
	Schema uint16

	Name   string
	Author string
	Notes  string
	Tempo  float64

	Globals   scopeDoc
	Stage     scriptableDoc
	Sprites   []spriteDoc
	Actors    []actorDoc
	Customs   []customDoc
	Thumbnail *imageDoc
}

type scopeDoc struct {
	Variables []variableDoc
	Lists     []listDoc
}

type variableDoc struct {
	Name  string
	Value valueDoc
	Cloud bool
}

type listDoc struct {
	Name  string
	Items []string
	Cloud bool
}

type scriptableDoc struct {
	Scope    scopeDoc
	Scripts  []scriptDoc
	Comments []commentDoc
	Costumes []costumeDoc
	// Costume is the index of the selected costume, or -1.
	Costume int
	Sounds  []soundDoc
	Volume  int
}

type spriteDoc struct {
	Name          string
	Scriptable    scriptableDoc
	X, Y          float64
	Direction     float64
	RotationStyle string
	Size          float64
	Draggable     bool
	Visible       bool
}

// actorDoc is one entry of the layer order: a sprite by name or a watcher.
type actorDoc struct {
	Sprite  string
	Watcher *watcherDoc
}

type watcherDoc struct {
	Target    targetDoc
	Block     blockDoc
	Style     string
	Pos       *pointDoc
	Visible   bool
	SliderMin float64
	SliderMax float64
}

// Watcher target kinds.
const (
	targetProject = "project"
	targetStage   = "stage"
	targetSprite  = "sprite"
)

type targetDoc struct {
	Kind   string
	Sprite string
}

type pointDoc struct {
	X, Y float64
}

type scriptDoc struct {
	Pos    *pointDoc
	Blocks []blockDoc
}

type commentDoc struct {
	Text string
	Pos  *pointDoc
}

// blockDoc is a block of a canonical type when Command is set, or a call of
// Customs[Custom-1] otherwise.
type blockDoc struct {
	Command string
	Custom  int
	Args    []valueDoc
	Comment string
}

// Kinds of valueDoc.
const (
	kindNil    = "nil"
	kindInt    = "int"
	kindFloat  = "float"
	kindString = "string"
	kindBool   = "bool"
	kindColor  = "color"
	kindBlock  = "block"
	kindStack  = "stack"
	kindCustom = "custom"
)

// valueDoc is a tagged argument value. Scalars keep their Go type across a
// round trip; Custom indexes the custom type table.
type valueDoc struct {
	Kind   string
	Int    int64
	Float  float64
	String string
	Bool   bool
	Block  *blockDoc
	Stack  []blockDoc
	Custom int
}

type customDoc struct {
	Shape  string
	Atomic bool
	Parts  []partDoc
}

type partDoc struct {
	Text   string
	Insert *insertDoc
}

type insertDoc struct {
	Shape       string
	Kind        string
	Default     valueDoc
	Unevaluated bool
	Name        string
}

type costumeDoc struct {
	Name    string
	Image   imageDoc
	CenterX float64
	CenterY float64
}

type imageDoc struct {
	Format string
	Data   []byte
}

type soundDoc struct {
	Name string
	Data []byte
}
