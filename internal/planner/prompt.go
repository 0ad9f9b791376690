package planner

import (
	"fmt"
	"strings"

	"github.com/jeongsedam/policy-cli/internal/model"
)

const analysisSystemPrompt = `당신은 정책 전문가입니다. 항상 JSON 형식으로만 응답합니다.`

const retrySystemPrompt = `JSON 형식으로만 응답합니다.`

const analysisPromptTemplate = `당신은 정책 커뮤니케이션 자동화 시스템의 AI입니다.
정책의 기획부터 실행, 홍보, 성과관리까지 전체 프로세스를 설계합니다.

[입력 정보]
정책 제목: %s
정책 카테고리: %s
대상: %s
대상 톤: %s
대상 초점: %s
정책 설명: %s
강조 키워드: %s
제약 조건: %s

[출력 규칙]
- 반드시 JSON 형식으로만 출력
- 한국 현실에 맞는 실행 가능한 내용
- 과장 금지, 측정 가능한 지표 사용
- 대상에 맞는 톤과 메시지

[JSON 스키마]
{
  "policy_planning": {
    "objective": "정책 목표 (3-5문장)",
    "target_analysis": "대상 분석 (니즈, 특성, 접근법 3-5문장)",
    "key_strategies": ["핵심 전략 5-8개"],
    "expected_outcomes": ["기대 효과 5-7개"],
    "timeline": {
      "preparation": "준비 단계 내용",
      "pilot": "시범 운영 내용",
      "expansion": "확대 적용 내용"
    }
  },
  "execution_plan": {
    "action_items": [
      {"phase": "단계명", "action": "실행 내용", "responsible": "담당 주체", "timeline": "소요 기간"}
    ],
    "resources_needed": {
      "budget_range": "예산 범위 (구체적 금액 대신 범주)",
      "personnel": "필요 인력",
      "infrastructure": "필요 인프라"
    },
    "risk_management": [
      {"risk": "리스크 항목", "impact": "영향도", "mitigation": "완화 방안"}
    ]
  },
  "communication_strategy": {
    "key_messages": ["핵심 메시지 5-8개"],
    "channels": [
      {"channel": "채널명", "content_type": "콘텐츠 형식", "frequency": "발행 주기"}
    ],
    "target_specific_messages": {
      "citizens": "시민 대상 메시지",
      "youth": "청년 대상 메시지",
      "elderly": "노인 대상 메시지",
      "parents": "학부모 대상 메시지"
    }
  },
  "content_briefs": {
    "image_brief_1": {
      "concept": "이미지 컨셉 (5-7문장)",
      "scene_description": "장면 상세 묘사 (10-15문장)",
      "visual_style": "비주얼 스타일 (촬영 기법, 조명, 색감)",
      "key_message": "전달할 핵심 메시지"
    },
    "image_brief_2": {
      "concept": "이미지 컨셉 (5-7문장)",
      "scene_description": "장면 상세 묘사 (10-15문장)",
      "visual_style": "비주얼 스타일 (촬영 기법, 조명, 색감)",
      "key_message": "전달할 핵심 메시지"
    },
    "video_brief": {
      "duration": "영상 길이",
      "narrative_arc": "스토리 구조 (5-8문장)",
      "scenes": [
        {"timestamp": "시간대", "scene": "장면 내용", "visuals": "비주얼 요소", "audio": "오디오 (내레이션/음악/효과음)", "message": "전달 메시지"}
      ],
      "style_guide": "영상 스타일 가이드",
      "call_to_action": "행동 유도 문구"
    }
  },
  "marketing_materials": {
    "slogan": "슬로건 (20-30자)",
    "tagline": "태그라인 (40-60자)",
    "elevator_pitch": "엘리베이터 피치 (150-200자)",
    "press_release": "보도자료 형식 (300-500자)",
    "social_media_posts": [
      {"platform": "플랫폼", "content": "게시물 내용", "hashtags": ["해시태그"]}
    ],
    "faq": [
      {"question": "자주 묻는 질문", "answer": "답변"}
    ]
  },
  "performance_metrics": {
    "kpi_framework": [
      {"category": "지표 카테고리", "metric": "측정 항목", "measurement_method": "측정 방법", "target_range": "목표 범위 (구간/추이)", "data_source": "데이터 출처"}
    ],
    "success_criteria": ["성공 기준 5-7개"],
    "monitoring_plan": {
      "daily": "일간 모니터링 항목",
      "weekly": "주간 모니터링 항목",
      "monthly": "월간 모니터링 항목"
    },
    "improvement_triggers": ["개선이 필요한 시점을 알리는 지표 5-7개"]
  },
  "stakeholder_management": {
    "stakeholders": [
      {"group": "이해관계자 그룹", "interests": "관심사", "engagement_strategy": "소통 전략"}
    ],
    "objection_handling": [
      {"objection": "예상 반대 의견", "response": "대응 논리"}
    ]
  }
}

위 스키마를 정확히 따라 JSON만 출력하세요.`

const retryPromptTemplate = `이전 응답이 올바른 JSON 형식이 아닙니다.
아래 내용을 완벽한 JSON으로 다시 출력해주세요.

%s`

// buildAnalysisPrompt renders the planning prompt, including the tone/focus
// profile for the target persona.
func buildAnalysisPrompt(req model.AnalysisRequest) string {
	profile := req.TargetAudience.Profile()
	return fmt.Sprintf(analysisPromptTemplate,
		req.Title,
		req.Category,
		req.TargetAudience,
		profile.Tone,
		profile.Focus,
		req.Description,
		req.Keywords,
		req.Constraints,
	)
}

// buildRetryPrompt asks the model to reformulate its previous (unparseable)
// response as strict JSON.
func buildRetryPrompt(previous string) string {
	return fmt.Sprintf(retryPromptTemplate, previous)
}

// cleanJSON strips markdown code fences and surrounding prose from a model
// response, leaving the outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
