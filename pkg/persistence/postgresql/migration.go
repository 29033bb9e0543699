package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE submissions (
				id UUID PRIMARY KEY,
				template_id VARCHAR(255) NOT NULL,
				title VARCHAR(255) NOT NULL,
				department VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				submitted_by VARCHAR(255) NOT NULL,
				data JSONB,
				approval_workflow JSONB NOT NULL DEFAULT '[]',
				version BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				submitted_at TIMESTAMP WITH TIME ZONE,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_submissions_status ON submissions(status);
			CREATE INDEX idx_submissions_department ON submissions(department);
			CREATE INDEX idx_submissions_created_at ON submissions(created_at);

			CREATE TABLE users (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL UNIQUE,
				role VARCHAR(50) NOT NULL,
				department VARCHAR(255) NOT NULL,
				active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_users_role_department ON users(role, department);
			CREATE INDEX idx_users_active ON users(active);

			CREATE TABLE audit_log (
				id UUID PRIMARY KEY,
				actor_id VARCHAR(255) NOT NULL,
				actor_name VARCHAR(255),
				action VARCHAR(100) NOT NULL,
				description TEXT NOT NULL,
				resource_ref VARCHAR(255) NOT NULL,
				status VARCHAR(20) NOT NULL,
				metadata JSONB,
				timestamp TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_audit_log_resource_ref ON audit_log(resource_ref);
			CREATE INDEX idx_audit_log_timestamp ON audit_log(timestamp);

			CREATE TABLE notifications (
				id UUID PRIMARY KEY,
				recipient_id VARCHAR(255) NOT NULL,
				type VARCHAR(50) NOT NULL,
				title VARCHAR(255) NOT NULL,
				message TEXT NOT NULL,
				payload JSONB,
				read BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_notifications_recipient_id ON notifications(recipient_id);
			CREATE INDEX idx_notifications_created_at ON notifications(created_at);
		`,
	}
}
