package planner

import (
	"fmt"

	"github.com/jeongsedam/policy-cli/internal/model"
)

// Video prompt style keys, as persisted in the video_prompts content row.
const (
	VideoStyleDocumentary   = "documentary"
	VideoStyleCinematic     = "cinematic"
	VideoStyleModernDynamic = "modern_dynamic"
)

const videoBaseContext = `Duration: 10 seconds
Location: Modern South Korea
Language: Korean subtitles only
No English text visible`

const videoDocumentaryTemplate = `[스타일 1: 다큐멘터리 리얼리즘]

%s

Visual Style:
- Handheld camera feel, natural movements
- Realistic lighting, documentary aesthetic
- Authentic Korean street scenes and people
- Observational approach, fly-on-the-wall style
- Natural color grading with slight desaturation

Camera:
- Medium shots and close-ups
- Slight camera shake for realism
- Follow subjects naturally

Audio:
- Natural ambient sounds (traffic, voices, city sounds)
- Minimal background music
- Natural Korean dialogue or voice-over

Narrative: %s

Mood: Authentic, grounded, trustworthy
Pacing: Steady, observational
Final Message: %s

Technical: 24fps, cinematic aspect ratio, professional documentary style`

const videoCinematicTemplate = `[스타일 2: 시네마틱 드라마]

%s

Visual Style:
- Smooth cinematic camera movements (gimbal/slider)
- Dramatic lighting with warm and cool tones
- Korean urban landscape with cinematic composition
- Establishing shots of Seoul skyline or modern architecture
- Rich color grading inspired by Korean cinema

Camera:
- Wide establishing shots
- Slow push-ins and reveals
- Overhead/drone shots of Korean cityscape
- Smooth tracking shots

Audio:
- Emotional background music (orchestral or modern Korean OST style)
- Carefully designed sound effects
- Polished voice-over narration

Narrative: %s

Mood: Inspiring, emotional, aspirational
Pacing: Dynamic with emotional beats
Final Message: %s

Technical: 24fps, anamorphic feel, cinematic color grade`

const videoModernTemplate = `[스타일 3: 모던 다이내믹]

%s

Visual Style:
- Fast-paced dynamic cuts
- Modern Korean lifestyle and technology
- Bright, energetic visuals
- Clean, contemporary aesthetic
- Vibrant color grading with saturated tones

Camera:
- Quick cuts between multiple angles
- Time-lapse of Korean city life
- Dynamic camera movements
- Close-ups on details and faces
- Match cuts for visual rhythm

Audio:
- Upbeat modern Korean music
- Rhythmic sound design
- Quick voice-over or on-screen Korean text animations
- Sync with visual cuts

Narrative: %s

Mood: Energetic, modern, forward-thinking
Pacing: Fast, rhythmic, attention-grabbing
Final Message: %s

Technical: 30fps or 60fps slow-motion elements, high contrast, vibrant colors`

// VideoPrompts templates the three 10-second video styles from a brief,
// keyed by style name.
func VideoPrompts(brief model.VideoBrief) map[string]string {
	narrative := brief.NarrativeArc
	cta := brief.CallToAction

	return map[string]string{
		VideoStyleDocumentary:   fmt.Sprintf(videoDocumentaryTemplate, videoBaseContext, narrative, cta),
		VideoStyleCinematic:     fmt.Sprintf(videoCinematicTemplate, videoBaseContext, narrative, cta),
		VideoStyleModernDynamic: fmt.Sprintf(videoModernTemplate, videoBaseContext, narrative, cta),
	}
}
