package feature

import (
	"fmt"

	"github.com/specialistvlad/scratchkit/internal/media"
	"github.com/specialistvlad/scratchkit/internal/model"
)

// Vector is the "Vector Images" feature: costumes may be SVG.
type Vector struct{}

func (Vector) Name() string { return VectorImages }

func (Vector) Description() string {
	return "Costumes and backdrops may be vector (SVG) images."
}

// Workaround rasterizes every vector costume to PNG at its natural size.
func (Vector) Workaround(p *model.Project) []Fix {
	var fixes []Fix
	for _, s := range p.Scriptables() {
		for _, c := range s.Base().Costumes {
			if c.Image == nil || !c.Image.IsVector() {
				continue
			}
			fixes = append(fixes, Fix{
				Object: c,
				Detail: fmt.Sprintf("vector costume of %v rasterized to PNG", s),
				Apply: func() error {
					png, err := c.Image.Convert(media.PNG)
					if err != nil {
						return fmt.Errorf("rasterize costume %q: %w", c.Name, err)
					}
					c.Image = png
					return nil
				},
			})
		}
	}
	return fixes
}

func (Vector) Normalize(*model.Project) error { return nil }
