package planner

import (
	"fmt"
	"strings"

	"github.com/jeongsedam/policy-cli/internal/model"
)

// DefaultImageStyle is the photographic style block appended to every image
// prompt unless the configuration overrides it.
const DefaultImageStyle = `Professional documentary photography, ultra-realistic, photojournalistic style.
Location: Modern South Korea (Seoul, Busan, or other major Korean cities).
Architecture: Contemporary Korean buildings, clean streets, realistic urban/suburban settings.
People: Natural Korean faces with accurate facial features, realistic expressions.
DO NOT distort faces - maintain natural human proportions and features.
Lighting: Natural daylight, soft shadows, professional photography lighting.
Color palette: Natural, slightly desaturated, clean and modern aesthetic.
Atmosphere: Authentic everyday Korean life, genuine moments.
Technical requirements:
- High resolution, sharp focus on main subjects
- Proper depth of field
- Realistic skin tones (Korean complexion)
- Natural body proportions
- Clear, undistorted facial features
- Professional color grading
Forbidden elements:
- NO text, logos, signs with readable text
- NO distorted or warped faces
- NO unrealistic proportions
- NO stock photo feel
- NO overly posed or artificial scenes
- NO generic Asian stereotypes
Style reference: Korean documentary photography, modern Korean cinema aesthetics.`

const imagePromptTemplate = `%s

Scene description: %s

Visual style: %s

%s

Key message to convey: %s

Important: Create realistic Korean people with natural, undistorted facial features.
No text or writing should appear anywhere in the image.
Focus on authentic Korean urban/suburban environment and genuine human expressions.`

// BuildImagePrompt renders the final image-generation prompt from a brief.
// An empty styleOverride selects DefaultImageStyle.
func BuildImagePrompt(brief model.ImageBrief, styleOverride string) string {
	style := styleOverride
	if style == "" {
		style = DefaultImageStyle
	}

	prompt := fmt.Sprintf(imagePromptTemplate,
		brief.Concept,
		brief.SceneDescription,
		brief.VisualStyle,
		style,
		brief.KeyMessage,
	)
	return strings.TrimSpace(prompt)
}
