package models

import "gorm.io/gorm"

// SeedAchievementDefinitions installs the built-in achievement set when the
// table is empty. Operators can edit or add rows afterwards.
func SeedAchievementDefinitions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&AchievementDefinition{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defs := []AchievementDefinition{
		{Name: "First Find", Description: "Discover your first treasure", Icon: "compass", RequirementType: RequirementTreasuresFound, RequirementValue: 1, RewardPoints: 10},
		{Name: "Treasure Hunter", Description: "Discover 10 treasures", Icon: "map", RequirementType: RequirementTreasuresFound, RequirementValue: 10, RewardPoints: 50},
		{Name: "Master Hunter", Description: "Discover 50 treasures", Icon: "trophy", RequirementType: RequirementTreasuresFound, RequirementValue: 50, RewardPoints: 200},
		{Name: "Cache Maker", Description: "Hide your first treasure", Icon: "shovel", RequirementType: RequirementTreasuresCreated, RequirementValue: 1, RewardPoints: 10},
		{Name: "Architect", Description: "Hide 20 treasures", Icon: "castle", RequirementType: RequirementTreasuresCreated, RequirementValue: 20, RewardPoints: 100},
		{Name: "Social Butterfly", Description: "Add 5 friends", Icon: "users", RequirementType: RequirementFriends, RequirementValue: 5, RewardPoints: 25},
		{Name: "Week Streak", Description: "Stay active 7 days in a row", Icon: "flame", RequirementType: RequirementStreak, RequirementValue: 7, RewardPoints: 50},
		{Name: "Month Streak", Description: "Stay active 30 days in a row", Icon: "fire", RequirementType: RequirementStreak, RequirementValue: 30, RewardPoints: 250},
		{Name: "Level 5", Description: "Reach level 5", Icon: "star", RequirementType: RequirementSpecial, RequirementValue: 5, RewardPoints: 50},
		{Name: "Level 10", Description: "Reach level 10", Icon: "crown", RequirementType: RequirementSpecial, RequirementValue: 10, RewardPoints: 250},
	}
	return db.Create(&defs).Error
}
