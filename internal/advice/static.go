package advice

import (
	"context"

	"github.com/mkhalidi/rattil/internal/align"
)

// Fixed suggestion pools, keyed by the deviation category they address.
var (
	incorrectSuggestions = []string{
		"راجع مخارج الحروف للكلمات التي أخطأت فيها وكرر نطقها ببطء",
		"استمع إلى تلاوة مجودة للسورة وقارن نطقك بها كلمة كلمة",
		"قسّم الآيات الطويلة إلى مقاطع قصيرة وأتقن كل مقطع قبل الانتقال",
	}
	missingSuggestions = []string{
		"أعد حفظ المقاطع التي سقطت منك بالتكرار المتباعد على مدار اليوم",
		"اربط نهاية كل آية ببداية الآية التالية لتثبيت تسلسل الحفظ",
		"اقرأ السورة كاملة من المصحف مرة قبل التسميع لتنشيط الذاكرة",
	}
	extraSuggestions = []string{
		"تمهّل في التسميع؛ الكلمات الزائدة غالبا من التعجل أو الخلط بين الآيات المتشابهة",
		"انتبه للمواضع المتشابهة مع سور أخرى وراجعها جنبا إلى جنب",
	}
	generalSuggestions = []string{
		"سمّع يوميا ولو خمس دقائق؛ المداومة أثبت للحفظ من الجلسات الطويلة المتباعدة",
		"سجّل تلاوتك وأعد الاستماع إليها لاكتشاف مواضع الضعف بنفسك",
	}
)

// Static is an [Advisor] with a fixed suggestion list. It never fails and is
// the terminal fallback of every advisory chain.
type Static struct {
	max int
}

// Compile-time interface check.
var _ Advisor = (*Static)(nil)

// NewStatic returns a [Static] advisor capped at max suggestions. A max of
// zero or less applies [DefaultMaxSuggestions].
func NewStatic(max int) *Static {
	return &Static{max: max}
}

// Suggest assembles suggestions from the fixed pools, leading with the
// report's dominant deviation category. The error is always nil.
func (s *Static) Suggest(_ context.Context, report align.Report) ([]string, error) {
	var suggestions []string

	counts := report.ErrorCounts()
	if counts[align.KindMissing] >= counts[align.KindIncorrect] && counts[align.KindMissing] > 0 {
		suggestions = append(suggestions, missingSuggestions...)
		if counts[align.KindIncorrect] > 0 {
			suggestions = append(suggestions, incorrectSuggestions...)
		}
	} else if counts[align.KindIncorrect] > 0 {
		suggestions = append(suggestions, incorrectSuggestions...)
		if counts[align.KindMissing] > 0 {
			suggestions = append(suggestions, missingSuggestions...)
		}
	}
	if counts[align.KindExtra] > 0 {
		suggestions = append(suggestions, extraSuggestions...)
	}
	suggestions = append(suggestions, generalSuggestions...)

	return capSuggestions(suggestions, s.max), nil
}
