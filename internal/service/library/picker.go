package library

import (
	"math/rand"
	"sort"

	"reelforge/internal/model/library"
)

// LocationPicker 多样性选址器
// 在类型间轮转挑选地点，保证同一项目的场景地点类型尽量分散
// 随机源可注入，固定种子下选择结果确定
type LocationPicker struct {
	rnd *rand.Rand
}

// NewLocationPicker 创建选址器，rnd 为 nil 时使用默认随机源
func NewLocationPicker(rnd *rand.Rand) *LocationPicker {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return &LocationPicker{rnd: rnd}
}

// SelectDiverse 从目录中挑选 count 个地点
// 按类型分组后逐轮轮转，每轮在每个类型内随机取一个未用过的地点
// 目录耗尽则提前返回；轮转后仍不足时从剩余地点中随机补齐
func (p *LocationPicker) SelectDiverse(catalog []*library.Location, count int) []*library.Location {
	if count <= 0 || len(catalog) == 0 {
		return nil
	}
	if count > len(catalog) {
		count = len(catalog)
	}

	// 按类型分组
	byType := make(map[string][]*library.Location)
	for _, loc := range catalog {
		byType[loc.Type] = append(byType[loc.Type], loc)
	}

	// 类型遍历顺序固定，保证同种子下结果可复现
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	// 每个类型内先洗牌，轮转时依次弹出即为随机取样
	for _, t := range types {
		group := byType[t]
		p.rnd.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
	}

	selected := make([]*library.Location, 0, count)
	for len(selected) < count {
		picked := false
		for _, t := range types {
			if len(selected) >= count {
				break
			}
			group := byType[t]
			if len(group) == 0 {
				continue
			}
			selected = append(selected, group[0])
			byType[t] = group[1:]
			picked = true
		}
		if !picked {
			break
		}
	}

	return selected
}

// AssignScenes 将 sceneCount 个场景按连续块均分到所选地点
// scenesPerLocation = ceil(sceneCount / len(selected))
// 场景号（1 起）映射到地点下标 floor((sceneID-1)/scenesPerLocation)，越界收敛到最后一个地点
func AssignScenes(sceneCount int, selected []*library.Location) map[int]*library.Location {
	if sceneCount <= 0 || len(selected) == 0 {
		return nil
	}

	perLocation := (sceneCount + len(selected) - 1) / len(selected)
	mapping := make(map[int]*library.Location, sceneCount)
	for sceneID := 1; sceneID <= sceneCount; sceneID++ {
		idx := (sceneID - 1) / perLocation
		if idx >= len(selected) {
			idx = len(selected) - 1
		}
		mapping[sceneID] = selected[idx]
	}
	return mapping
}
