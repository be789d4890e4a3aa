package services

import (
	"sort"
	"strings"

	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/google/uuid"
)

type TreeNode struct {
	models.Folder
	Children []TreeNode `json:"children"`
}

// BuildTree nests a flat folder list under its nil-parent roots. Folders
// whose parent is missing from the input are dropped, siblings are ordered
// by name (case-insensitive), then creation time, then id, and every folder
// is emitted at most once so cyclic or duplicated input still terminates.
func BuildTree(folders []models.Folder) []TreeNode {
	children := make(map[uuid.UUID][]models.Folder)
	var roots []models.Folder
	for _, folder := range folders {
		if folder.ParentID == nil {
			roots = append(roots, folder)
			continue
		}
		children[*folder.ParentID] = append(children[*folder.ParentID], folder)
	}

	visited := make(map[uuid.UUID]bool, len(folders))
	return attachChildren(roots, children, visited)
}

func attachChildren(level []models.Folder, children map[uuid.UUID][]models.Folder, visited map[uuid.UUID]bool) []TreeNode {
	sortFolders(level)

	nodes := make([]TreeNode, 0, len(level))
	for _, folder := range level {
		if visited[folder.ID] {
			continue
		}
		visited[folder.ID] = true

		nodes = append(nodes, TreeNode{
			Folder:   folder,
			Children: attachChildren(children[folder.ID], children, visited),
		})
	}
	return nodes
}

func sortFolders(folders []models.Folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		a, b := folders[i], folders[j]
		if an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name); an != bn {
			return an < bn
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
