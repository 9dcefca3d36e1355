package model

import "fmt"

// resolver is a minimal Resolver over a fixed command table.
type resolver map[string]Type

func (r resolver) Resolve(id any) (Type, error) {
	if s, ok := id.(string); ok {
		if t, ok := r[s]; ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unknown block %v", id)
}

func testType(shape BlockShape, command string, parts ...Part) *BlockType {
	return NewBlockType(NewPluginBlockType("test", shape, command, parts).WithFormat("test"))
}

var (
	forwardType = testType(StackShape, "forward:",
		TextPart("move "), InsertPart(NewInsert(InsertNumber, "", 10)), TextPart(" steps"))
	sayType = testType(StackShape, "say:",
		TextPart("say "), InsertPart(NewInsert(InsertString, "", "Hello!")))
	readVarType = testType(ReporterShape, CommandReadVariable,
		InsertPart(NewInsert(InsertInline, "var", "var")))
	listType = testType(ReporterShape, CommandContentsOfList,
		InsertPart(NewInsert(InsertInline, "list", "list")))
	foreverType = testType(CapShape, "doForever",
		TextPart("forever"), InsertPart(NewInsert(InsertStack, "", nil)))
	broadcastType = testType(StackShape, "broadcast:",
		TextPart("broadcast "), InsertPart(NewInsert(InsertReadonlyMenu, "broadcast", nil)))
	pairType = testType(StackShape, "pair",
		InsertPart(NewInsert(InsertNumber, "", nil)), TextPart(" and "), InsertPart(NewInsert(InsertString, "", "")))

	testResolver = resolver{
		"forward:":            forwardType,
		"say:":                sayType,
		CommandReadVariable:   readVarType,
		CommandContentsOfList: listType,
		"doForever":           foreverType,
		"broadcast:":          broadcastType,
		"pair":                pairType,
	}
)
