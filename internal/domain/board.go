package domain

type BoardID string
