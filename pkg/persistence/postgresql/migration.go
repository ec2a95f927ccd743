package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				client_id VARCHAR(255) NOT NULL,
				plan_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('pending', 'in_progress', 'completed', 'failed')),
				total_estimated_minutes INT NOT NULL,
				actual_minutes DOUBLE PRECISION,
				started_at TIMESTAMP WITH TIME ZONE,
				completed_at TIMESTAMP WITH TIME ZONE,
				request JSONB NOT NULL,
				documents JSONB,
				filing_number VARCHAR(255),
				ein VARCHAR(255),
				bank_account VARCHAR(255),
				compliance_schedule JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_client_id ON workflows(client_id);
			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);

			-- One row per step: parallel-group steps update disjoint rows, so
			-- near-simultaneous completions never contend on the parent record.
			CREATE TABLE workflow_steps (
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				id VARCHAR(64) NOT NULL,
				position INT NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL CHECK (status IN ('pending', 'in_progress', 'completed', 'failed')),
				estimated_minutes INT NOT NULL,
				actual_minutes DOUBLE PRECISION,
				error TEXT,
				started_at TIMESTAMP WITH TIME ZONE,
				completed_at TIMESTAMP WITH TIME ZONE,
				PRIMARY KEY (workflow_id, id)
			);

			CREATE INDEX idx_workflow_steps_workflow_id ON workflow_steps(workflow_id);
			CREATE INDEX idx_workflow_steps_status ON workflow_steps(status);
		`,
	}
}
