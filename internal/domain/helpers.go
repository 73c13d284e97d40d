package domain

import (
	"fmt"
	"time"
)

// for debug
func (m *Message) String() string {
	s := fmt.Sprintf("[id:%d, member:%d, created:%s", m.Id, m.MemberId, m.CreatedAt.Format(time.StampMilli))
	if m.ChannelId != nil {
		s += fmt.Sprintf(", channel:%d", *m.ChannelId)
	}
	if m.ConversationId != nil {
		s += fmt.Sprintf(", conversation:%d", *m.ConversationId)
	}
	if m.ParentMessageId != nil {
		s += fmt.Sprintf(", parent:%d", *m.ParentMessageId)
	}
	return s + "]"
}
