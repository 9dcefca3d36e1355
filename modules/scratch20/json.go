package scratch20

import "encoding/json"

// The types below mirror project.json. Scripts, blocks and comments are
// heterogeneous JSON arrays and stay as []any until decoded against the block
// vocabulary.

type projectJSON struct {
	objectJSON
	Children    []json.RawMessage `json:"children"`
	Tempo       float64           `json:"tempoBPM"`
	PenLayerMD5 string            `json:"penLayerMD5,omitempty"`
	PenLayerID  int               `json:"penLayerID"`
	VideoAlpha  float64           `json:"videoAlpha"`
	Info        map[string]any    `json:"info"`
}

type objectJSON struct {
	ObjName             string         `json:"objName"`
	Variables           []variableJSON `json:"variables,omitempty"`
	Lists               []listJSON     `json:"lists,omitempty"`
	Scripts             [][]any        `json:"scripts,omitempty"`
	ScriptComments      [][]any        `json:"scriptComments,omitempty"`
	Sounds              []soundJSON    `json:"sounds,omitempty"`
	Costumes            []costumeJSON  `json:"costumes,omitempty"`
	CurrentCostumeIndex int            `json:"currentCostumeIndex"`
	Volume              *float64       `json:"volume,omitempty"`
}

// childJSON decodes any entry of the children array: a sprite, a variable or
// block watcher, or a list watcher. Which one is told apart by the fields
// present.
type childJSON struct {
	// sprite
	ObjName             string         `json:"objName,omitempty"`
	Variables           []variableJSON `json:"variables,omitempty"`
	Lists               []listJSON     `json:"lists,omitempty"`
	Scripts             [][]any        `json:"scripts,omitempty"`
	ScriptComments      [][]any        `json:"scriptComments,omitempty"`
	Sounds              []soundJSON    `json:"sounds,omitempty"`
	Costumes            []costumeJSON  `json:"costumes,omitempty"`
	CurrentCostumeIndex *int           `json:"currentCostumeIndex,omitempty"`
	Volume              *float64       `json:"volume,omitempty"`
	ScratchX            *float64       `json:"scratchX,omitempty"`
	ScratchY            *float64       `json:"scratchY,omitempty"`
	Scale               float64        `json:"scale,omitempty"`
	Direction           float64        `json:"direction,omitempty"`
	RotationStyle       string         `json:"rotationStyle,omitempty"`
	IsDraggable         bool           `json:"isDraggable,omitempty"`
	IndexInLibrary      int            `json:"indexInLibrary,omitempty"`
	SpriteInfo          map[string]any `json:"spriteInfo,omitempty"`

	// watchers
	Target     string   `json:"target,omitempty"`
	Cmd        string   `json:"cmd,omitempty"`
	Param      any      `json:"param,omitempty"`
	Color      *int     `json:"color,omitempty"`
	Label      string   `json:"label,omitempty"`
	Mode       int      `json:"mode,omitempty"`
	SliderMin  *float64 `json:"sliderMin,omitempty"`
	SliderMax  *float64 `json:"sliderMax,omitempty"`
	IsDiscrete bool     `json:"isDiscrete,omitempty"`

	// list watcher
	ListName     string  `json:"listName,omitempty"`
	Contents     []any   `json:"contents,omitempty"`
	IsPersistent bool    `json:"isPersistent,omitempty"`
	Width        float64 `json:"width,omitempty"`
	Height       float64 `json:"height,omitempty"`

	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Visible *bool    `json:"visible,omitempty"`
}

func (c *childJSON) isSprite() bool { return c.ScratchX != nil }

func (c *childJSON) isListWatcher() bool { return c.ListName != "" }

func (c *childJSON) object() objectJSON {
	o := objectJSON{
		ObjName:        c.ObjName,
		Variables:      c.Variables,
		Lists:          c.Lists,
		Scripts:        c.Scripts,
		ScriptComments: c.ScriptComments,
		Sounds:         c.Sounds,
		Costumes:       c.Costumes,
		Volume:         c.Volume,
	}
	if c.CurrentCostumeIndex != nil {
		o.CurrentCostumeIndex = *c.CurrentCostumeIndex
	}
	return o
}

type spriteJSON struct {
	objectJSON
	ScratchX       float64        `json:"scratchX"`
	ScratchY       float64        `json:"scratchY"`
	Scale          float64        `json:"scale"`
	Direction      float64        `json:"direction"`
	RotationStyle  string         `json:"rotationStyle"`
	IsDraggable    bool           `json:"isDraggable"`
	IndexInLibrary int            `json:"indexInLibrary"`
	Visible        bool           `json:"visible"`
	SpriteInfo     map[string]any `json:"spriteInfo"`
}

type watcherJSON struct {
	Target     string   `json:"target"`
	Cmd        string   `json:"cmd"`
	Param      any      `json:"param"`
	Color      int      `json:"color"`
	Label      string   `json:"label"`
	Mode       int      `json:"mode"`
	SliderMin  float64  `json:"sliderMin"`
	SliderMax  float64  `json:"sliderMax"`
	IsDiscrete bool     `json:"isDiscrete"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	Visible    bool     `json:"visible"`
}

type listWatcherJSON struct {
	listJSON
	Target string `json:"target"`
}

type variableJSON struct {
	Name         string `json:"name"`
	Value        any    `json:"value"`
	IsPersistent bool   `json:"isPersistent"`
}

type listJSON struct {
	ListName     string   `json:"listName"`
	Contents     []any    `json:"contents"`
	IsPersistent bool     `json:"isPersistent"`
	X            *float64 `json:"x,omitempty"`
	Y            *float64 `json:"y,omitempty"`
	Width        float64  `json:"width"`
	Height       float64  `json:"height"`
	Visible      bool     `json:"visible"`
}

type costumeJSON struct {
	CostumeName      string  `json:"costumeName"`
	BaseLayerID      int     `json:"baseLayerID"`
	BaseLayerMD5     string  `json:"baseLayerMD5"`
	BitmapResolution float64 `json:"bitmapResolution,omitempty"`
	RotationCenterX  float64 `json:"rotationCenterX"`
	RotationCenterY  float64 `json:"rotationCenterY"`
}

type soundJSON struct {
	SoundName   string `json:"soundName"`
	SoundID     int    `json:"soundID"`
	MD5         string `json:"md5"`
	SampleCount int    `json:"sampleCount"`
	Rate        int    `json:"rate"`
	Format      string `json:"format"`
}

// Watcher modes.
const (
	modeNormal = 1
	modeLarge  = 2
	modeSlider = 3
)

// Commands with a layout of their own in project.json.
const (
	// getVarCommand is the watcher command for variables.
	getVarCommand  = "getVar:"
	procDefCommand = "procDef"
	callCommand    = "call"
)
