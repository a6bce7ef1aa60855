package scheduler

import "classgrid/backend/internal/model"

// compatibleRoomKinds 课程类型 → 可用教室类型
var compatibleRoomKinds = map[string][]string{
	model.SubjectKindTheory:    {model.RoomKindLecture, model.RoomKindSeminar},
	model.SubjectKindLab:       {model.RoomKindLab},
	model.SubjectKindPractical: {model.RoomKindLab, model.RoomKindSeminar},
}

// IsKnownSubjectKind 判断课程类型是否合法
func IsKnownSubjectKind(kind string) bool {
	_, ok := compatibleRoomKinds[kind]
	return ok
}

// IsKnownRoomKind 判断教室类型是否合法
func IsKnownRoomKind(kind string) bool {
	switch kind {
	case model.RoomKindLecture, model.RoomKindLab, model.RoomKindSeminar:
		return true
	}
	return false
}

// CompatibleRoomKinds 返回课程类型允许使用的教室类型
func CompatibleRoomKinds(subjectKind string) []string {
	kinds := compatibleRoomKinds[subjectKind]
	out := make([]string, len(kinds))
	copy(out, kinds)
	return out
}

// IsCompatible 判断课程类型能否安排在该类型的教室
func IsCompatible(subjectKind, roomKind string) bool {
	for _, k := range compatibleRoomKinds[subjectKind] {
		if k == roomKind {
			return true
		}
	}
	return false
}
