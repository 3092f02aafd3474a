package gamification

// Reason tags the event that triggered an award. The set is fixed; point
// values come from configuration and may be overridden per deployment.
type Reason string

const (
	ReasonTreasureCreated     Reason = "treasure_created"
	ReasonTreasureFound       Reason = "treasure_found"
	ReasonFirstToFind         Reason = "first_to_find"
	ReasonRareTreasureFound   Reason = "rare_treasure_found"
	ReasonDailyStreak         Reason = "daily_streak"
	ReasonFriendAdded         Reason = "friend_added"
	ReasonChallengeCompleted  Reason = "challenge_completed"
	ReasonAchievementUnlocked Reason = "achievement_unlocked"
	ReasonCommentPosted       Reason = "comment_posted"
	ReasonLikeReceived        Reason = "like_received"
)

// DefaultRewardPoints maps each reason code to its built-in point value.
// achievement_unlocked is zero here because the reward is carried explicitly
// by the achievement definition.
func DefaultRewardPoints() map[Reason]int {
	return map[Reason]int{
		ReasonTreasureCreated:     10,
		ReasonTreasureFound:       20,
		ReasonFirstToFind:         15,
		ReasonRareTreasureFound:   30,
		ReasonDailyStreak:         5,
		ReasonFriendAdded:         5,
		ReasonChallengeCompleted:  25,
		ReasonAchievementUnlocked: 0,
		ReasonCommentPosted:       2,
		ReasonLikeReceived:        1,
	}
}
