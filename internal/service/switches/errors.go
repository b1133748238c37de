package switches

import (
	"fmt"
	"strings"
	"time"

	"plural_proxy_server/pkg/errorx"
	"plural_proxy_server/pkg/util/timeutil"
)

// BeforeLastSwitchError 目标时间早于倒数第二次切换
type BeforeLastSwitchError struct {
	*errorx.CodeError
	SecondLast time.Time
}

// Unwrap 返回内嵌的 CodeError，便于 errors.Is/As 与 errorx.GetCode
func (e *BeforeLastSwitchError) Unwrap() error {
	return e.CodeError
}

func newBeforeLastSwitchError(secondLast, now time.Time) *BeforeLastSwitchError {
	return &BeforeLastSwitchError{
		CodeError: errorx.Newf(errorx.CodeCannotMoveSwitchBeforeLast,
			"Can't move switch to before last switch time (%s ago).", timeutil.HumanizeSince(secondLast, now)),
		SecondLast: secondLast,
	}
}

// membersAlreadyFronting 列出已在前台的成员名
func membersAlreadyFronting(names []string) error {
	switch len(names) {
	case 0:
		return errorx.New(errorx.CodeMembersAlreadyFronting, "There's already no one in front.")
	case 1:
		return errorx.Newf(errorx.CodeMembersAlreadyFronting, "%s is already fronting.", names[0])
	default:
		return errorx.Newf(errorx.CodeMembersAlreadyFronting, "Members %s are already fronting.", strings.Join(names, ", "))
	}
}

// invalidTime 时间参数无法解析
func invalidTime(input string) error {
	return errorx.New(errorx.CodeInvalidTime, fmt.Sprintf("'%s' can't be parsed as a valid time.", input))
}
