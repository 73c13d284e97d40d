package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/chatter-dev/chatter/internal/domain"
)

type threadSummaryRow struct {
	count       int
	lastReplyAt time.Time
	lastReplier domain.MemberId
}

// enrichMessages fills the denormalized display fields: author identity,
// per-parent thread summaries and grouped reactions. Three batched
// queries, no per-message round trips.
func (s *Storage) enrichMessages(ctx context.Context, msgs []domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	msgIds := make([]int64, len(msgs))
	for i, m := range msgs {
		msgIds[i] = m.Id
	}

	summaries, err := s.threadSummaries(ctx, msgIds)
	if err != nil {
		return err
	}

	memberIds := make(map[domain.MemberId]bool)
	for _, m := range msgs {
		memberIds[m.MemberId] = true
	}
	for _, sum := range summaries {
		memberIds[sum.lastReplier] = true
	}
	identities, err := s.memberIdentities(ctx, memberIds)
	if err != nil {
		return err
	}

	reactions, err := s.reactionGroups(ctx, msgIds)
	if err != nil {
		return err
	}

	for i := range msgs {
		msg := &msgs[i]
		if author, ok := identities[msg.MemberId]; ok {
			msg.AuthorName = author.UserName
			msg.AuthorImage = author.UserImage
		}
		if sum, ok := summaries[msg.Id]; ok {
			thread := &domain.ThreadSummary{Count: sum.count, LastReplyAt: sum.lastReplyAt}
			if replier, ok := identities[sum.lastReplier]; ok {
				thread.Name = replier.UserName
				thread.Image = replier.UserImage
			}
			msg.Thread = thread
		}
		msg.Reactions = reactions[msg.Id]
	}
	return nil
}

// threadSummaries computes reply count, last reply time and last replier
// per parent message id.
func (s *Storage) threadSummaries(ctx context.Context, msgIds []int64) (map[domain.MsgId]threadSummaryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT DISTINCT ON (parent_message_id)
		parent_message_id,
		member_id,
		created,
		COUNT(*) OVER (PARTITION BY parent_message_id)
	FROM messages
	WHERE parent_message_id = ANY($1)
	ORDER BY parent_message_id, created DESC, id DESC`, pq.Array(msgIds))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread summaries: %w", err)
	}
	defer rows.Close()

	summaries := make(map[domain.MsgId]threadSummaryRow)
	for rows.Next() {
		var parentId domain.MsgId
		var row threadSummaryRow
		if err := rows.Scan(&parentId, &row.lastReplier, &row.lastReplyAt, &row.count); err != nil {
			return nil, fmt.Errorf("failed to scan thread summary: %w", err)
		}
		summaries[parentId] = row
	}
	return summaries, rows.Err()
}

func (s *Storage) memberIdentities(ctx context.Context, memberIds map[domain.MemberId]bool) (map[domain.MemberId]domain.Member, error) {
	ids := make([]int64, 0, len(memberIds))
	for id := range memberIds {
		ids = append(ids, id)
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT m.id, u.name, u.image
	FROM members m
	JOIN users u ON u.id = m.user_id
	WHERE m.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member identities: %w", err)
	}
	defer rows.Close()

	identities := make(map[domain.MemberId]domain.Member, len(ids))
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.Id, &m.UserName, &m.UserImage); err != nil {
			return nil, fmt.Errorf("failed to scan member identity: %w", err)
		}
		identities[m.Id] = m
	}
	return identities, rows.Err()
}

// reactionGroups aggregates reactions by value per message, preserving
// first-reaction order within a message.
func (s *Storage) reactionGroups(ctx context.Context, msgIds []int64) (map[domain.MsgId][]domain.ReactionGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT message_id, value, member_id
	FROM reactions
	WHERE message_id = ANY($1)
	ORDER BY id`, pq.Array(msgIds))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reactions: %w", err)
	}
	defer rows.Close()

	groups := make(map[domain.MsgId][]domain.ReactionGroup)
	for rows.Next() {
		var msgId domain.MsgId
		var value string
		var memberId domain.MemberId
		if err := rows.Scan(&msgId, &value, &memberId); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}

		found := false
		for i := range groups[msgId] {
			if groups[msgId][i].Value == value {
				groups[msgId][i].Count++
				groups[msgId][i].MemberIds = append(groups[msgId][i].MemberIds, memberId)
				found = true
				break
			}
		}
		if !found {
			groups[msgId] = append(groups[msgId], domain.ReactionGroup{
				Value:     value,
				Count:     1,
				MemberIds: []domain.MemberId{memberId},
			})
		}
	}
	return groups, rows.Err()
}
