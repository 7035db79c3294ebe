package planning

import (
	"math"

	"bem-planning/backend/internal/model"
)

// ── 完成度计算 ──

// ModuleProgression min(100, round(已完成学时 / 总学时 × 100))；总学时为 0 时记为 0
func ModuleProgression(completedMinutes int, requiredHours float64) int {
	if requiredHours <= 0 || completedMinutes <= 0 {
		return 0
	}
	p := int(math.Round(float64(completedMinutes) / 60 / requiredHours * 100))
	if p > 100 {
		return 100
	}
	return p
}

// NextModuleStatus 根据完成度推进模块状态，只前进不回退
func NextModuleStatus(current model.ProgressStatus, progression int) model.ProgressStatus {
	if current == model.ProgressComplete {
		return current
	}
	if progression >= 100 {
		return model.ProgressComplete
	}
	if progression > 0 && current == model.ProgressPlanned {
		return model.ProgressInProgress
	}
	return current
}

// ProgramProgression 各模块完成度的算术平均（四舍五入）
func ProgramProgression(moduleProgressions []int) int {
	if len(moduleProgressions) == 0 {
		return 0
	}
	sum := 0
	for _, p := range moduleProgressions {
		sum += p
	}
	return int(math.Round(float64(sum) / float64(len(moduleProgressions))))
}

// NextProgramStatus 全部模块完成 → COMPLETE；有进度且仍为 PLANNED → IN_PROGRESS
func NextProgramStatus(current model.ProgressStatus, progression int, allModulesComplete bool) model.ProgressStatus {
	if current == model.ProgressComplete {
		return current
	}
	if allModulesComplete {
		return model.ProgressComplete
	}
	if progression > 0 && current == model.ProgressPlanned {
		return model.ProgressInProgress
	}
	return current
}
